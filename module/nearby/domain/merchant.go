package domain

type Merchant struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	LogoURL  string     `json:"logo_url,omitempty"`
	Category string     `json:"category"`
	Location Coordinate `json:"location"`
}

type RadiusGroup struct {
	Band      RadiusBand `json:"radius"`
	Merchants []Merchant `json:"merchants"`
}
