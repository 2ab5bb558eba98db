package domain

type OpenSessionRequest struct {
	CustomerID string
	Center     Coordinate
	Radius     RadiusBand
	Mode       ViewMode
}
