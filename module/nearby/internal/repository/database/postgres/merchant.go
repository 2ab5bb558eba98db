package postgres

import (
	"context"
	"database/sql"

	"github.com/nandanugg/rescue-nearby/module/nearby/domain"
	"github.com/nandanugg/rescue-nearby/module/nearby/internal/repository/database"
)

var _ database.MerchantRepository = (*MerchantRepo)(nil)

type MerchantRepo struct {
	db *sql.DB
}

func NewMerchantRepo(db *sql.DB) *MerchantRepo {
	return &MerchantRepo{db: db}
}

// ListInArea returns the merchants inside the bounding rectangle of area.
// Callers filter by exact distance.
func (r *MerchantRepo) ListInArea(ctx context.Context, area domain.Area) ([]domain.Merchant, error) {
	b := area.Bounds()
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, logo_url, category, latitude, longitude FROM merchants WHERE latitude BETWEEN $1 AND $2 AND longitude BETWEEN $3 AND $4 ORDER BY id`,
		b.MinLat, b.MaxLat, b.MinLon, b.MaxLon,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Merchant
	for rows.Next() {
		var (
			m    domain.Merchant
			logo sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Name, &logo, &m.Category, &m.Location.Lat, &m.Location.Lon); err != nil {
			return nil, err
		}
		m.LogoURL = logo.String
		results = append(results, m)
	}
	return results, rows.Err()
}
