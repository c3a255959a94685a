package service

import (
	"context"
	"database/sql"
	"fmt"
)

// NamedCount pairs a display label with an occurrence count.
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthCount is a roll count for one YYYY-MM bucket.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Stats is the full aggregation over a user's rolls, frames, and
// development history. Every field is computed from live queries, nothing
// is cached.
type Stats struct {
	RollsByStatus     map[string]int `json:"rolls_by_status"`
	TotalFramesLogged int            `json:"total_frames_logged"`
	TopFilmStocks     []NamedCount   `json:"top_film_stocks"`
	RollsByFormat     []NamedCount   `json:"rolls_by_format"`
	RollsByType       []NamedCount   `json:"rolls_by_type"`
	TopCameras        []NamedCount   `json:"top_cameras"`
	TopLenses         []NamedCount   `json:"top_lenses"`
	DevTypeSplit      map[string]int `json:"dev_type_split"`
	TotalDevCost      float64        `json:"total_dev_cost"`
	TopLocations      []NamedCount   `json:"top_locations"`
	RollsByMonth      []MonthCount   `json:"rolls_by_month"`
}

// StockLevel is one film stock in the low-stock report.
type StockLevel struct {
	Brand    string `json:"brand"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// LowStockReport splits analog stocks at or below the threshold into the
// still-available and the exhausted.
type LowStockReport struct {
	LowStock   []StockLevel `json:"low_stock"`
	OutOfStock []StockLevel `json:"out_of_stock"`
}

// EntityCounts are the per-entity row totals shown on the dashboard.
type EntityCounts struct {
	Cameras    int `json:"cameras"`
	Lenses     int `json:"lenses"`
	FilmStocks int `json:"film_stocks"`
	Rolls      int `json:"rolls"`
}

// UsageStats names the single most-used film stock, camera, and lens. A nil
// field means the user has no data for that dimension yet.
type UsageStats struct {
	FilmStock *string `json:"film_stock"`
	Camera    *string `json:"camera"`
	Lens      *string `json:"lens"`
}

// LoadedCamera is a camera currently holding an active roll.
type LoadedCamera struct {
	CameraID   int64  `json:"camera_id"`
	CameraName string `json:"camera_name"`
	FilmName   string `json:"film_name"`
	Status     string `json:"status"`
}

// StatsService computes read-only aggregations. It queries the database
// directly rather than going through the entity stores, since none of its
// queries map onto a single entity.
type StatsService struct {
	db *sql.DB
}

func NewStatsService(db *sql.DB) *StatsService {
	return &StatsService{db: db}
}

const topLimit = 5

// Stats computes the full aggregation for one user.
func (s *StatsService) Stats(ctx context.Context, userID int64) (*Stats, error) {
	stats := &Stats{
		RollsByStatus: map[string]int{},
		DevTypeSplit:  map[string]int{},
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM rolls WHERE user_id = ? GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("rolls by status: %w", err)
	}
	if err := collectMap(rows, stats.RollsByStatus); err != nil {
		return nil, fmt.Errorf("rolls by status: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM frames f
		 JOIN rolls r ON f.roll_id = r.id
		 WHERE r.user_id = ? AND f.subject != ''`, userID).Scan(&stats.TotalFramesLogged)
	if err != nil {
		return nil, fmt.Errorf("frames logged: %w", err)
	}

	stats.TopFilmStocks, err = s.namedCounts(ctx,
		`SELECT fs.brand || ' ' || fs.name, COUNT(*) AS cnt
		 FROM rolls r
		 JOIN film_stocks fs ON r.film_stock_id = fs.id
		 WHERE r.user_id = ?
		 GROUP BY r.film_stock_id
		 ORDER BY cnt DESC
		 LIMIT ?`, userID, topLimit)
	if err != nil {
		return nil, fmt.Errorf("top film stocks: %w", err)
	}

	stats.RollsByFormat, err = s.namedCounts(ctx,
		`SELECT fs.format, COUNT(*)
		 FROM rolls r
		 JOIN film_stocks fs ON r.film_stock_id = fs.id
		 WHERE r.user_id = ?
		 GROUP BY fs.format`, userID)
	if err != nil {
		return nil, fmt.Errorf("rolls by format: %w", err)
	}

	stats.RollsByType, err = s.namedCounts(ctx,
		`SELECT fs.type, COUNT(*)
		 FROM rolls r
		 JOIN film_stocks fs ON r.film_stock_id = fs.id
		 WHERE r.user_id = ?
		 GROUP BY fs.type`, userID)
	if err != nil {
		return nil, fmt.Errorf("rolls by type: %w", err)
	}

	stats.TopCameras, err = s.namedCounts(ctx,
		`SELECT c.name, COUNT(*) AS cnt
		 FROM rolls r
		 JOIN cameras c ON r.camera_id = c.id
		 WHERE r.user_id = ? AND r.camera_id IS NOT NULL
		 GROUP BY r.camera_id
		 ORDER BY cnt DESC
		 LIMIT ?`, userID, topLimit)
	if err != nil {
		return nil, fmt.Errorf("top cameras: %w", err)
	}

	stats.TopLenses, err = s.namedCounts(ctx,
		`SELECT l.name, COUNT(*) AS cnt
		 FROM frames f
		 JOIN lenses l ON f.lens_id = l.id
		 JOIN rolls r ON f.roll_id = r.id
		 WHERE r.user_id = ? AND f.lens_id IS NOT NULL
		 GROUP BY f.lens_id
		 ORDER BY cnt DESC
		 LIMIT ?`, userID, topLimit)
	if err != nil {
		return nil, fmt.Errorf("top lenses: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT rd.dev_type, COUNT(*)
		 FROM roll_development rd
		 JOIN rolls r ON rd.roll_id = r.id
		 WHERE r.user_id = ?
		 GROUP BY rd.dev_type`, userID)
	if err != nil {
		return nil, fmt.Errorf("dev type split: %w", err)
	}
	if err := collectMap(rows, stats.DevTypeSplit); err != nil {
		return nil, fmt.Errorf("dev type split: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(rd.cost_amount), 0)
		 FROM roll_development rd
		 JOIN rolls r ON rd.roll_id = r.id
		 WHERE r.user_id = ?`, userID).Scan(&stats.TotalDevCost)
	if err != nil {
		return nil, fmt.Errorf("total dev cost: %w", err)
	}

	stats.TopLocations, err = s.namedCounts(ctx,
		`SELECT location, COUNT(*) AS cnt
		 FROM rolls
		 WHERE user_id = ? AND location != ''
		 GROUP BY location
		 ORDER BY cnt DESC
		 LIMIT ?`, userID, topLimit)
	if err != nil {
		return nil, fmt.Errorf("top locations: %w", err)
	}

	stats.RollsByMonth, err = s.rollsByMonth(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rolls by month: %w", err)
	}

	return stats, nil
}

func (s *StatsService) namedCounts(ctx context.Context, query string, args ...any) ([]NamedCount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []NamedCount{}
	for rows.Next() {
		var nc NamedCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}

func (s *StatsService) rollsByMonth(ctx context.Context, userID int64) ([]MonthCount, error) {
	// Timestamps are bound as RFC 3339 text with nanosecond precision, which
	// strftime cannot parse. The YYYY-MM prefix is position-stable, so take
	// it directly.
	rows, err := s.db.QueryContext(ctx,
		`SELECT substr(loaded_at, 1, 7) AS month, COUNT(*)
		 FROM rolls
		 WHERE user_id = ? AND loaded_at IS NOT NULL
		 GROUP BY month
		 ORDER BY month DESC
		 LIMIT 12`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MonthCount{}
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

func collectMap(rows *sql.Rows, dst map[string]int) error {
	defer rows.Close()
	for rows.Next() {
		var key string
		var cnt int
		if err := rows.Scan(&key, &cnt); err != nil {
			return err
		}
		dst[key] = cnt
	}
	return rows.Err()
}

// LowStock lists analog film stocks whose quantity on hand is at or below
// the threshold, split into low and exhausted. Digital stocks never run out
// and are excluded.
func (s *StatsService) LowStock(ctx context.Context, userID int64, threshold int) (*LowStockReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT brand, name, quantity_on_hand
		 FROM film_stocks
		 WHERE user_id = ? AND media_type = 'analog' AND quantity_on_hand <= ?
		 ORDER BY quantity_on_hand, brand, name`, userID, threshold)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()

	report := &LowStockReport{
		LowStock:   []StockLevel{},
		OutOfStock: []StockLevel{},
	}
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(&sl.Brand, &sl.Name, &sl.Quantity); err != nil {
			return nil, fmt.Errorf("low stock: %w", err)
		}
		if sl.Quantity == 0 {
			report.OutOfStock = append(report.OutOfStock, sl)
		} else {
			report.LowStock = append(report.LowStock, sl)
		}
	}
	return report, rows.Err()
}

// Counts returns the per-entity row totals for the user.
func (s *StatsService) Counts(ctx context.Context, userID int64) (*EntityCounts, error) {
	var c EntityCounts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"cameras", &c.Cameras},
		{"lenses", &c.Lenses},
		{"film_stocks", &c.FilmStocks},
		{"rolls", &c.Rolls},
	} {
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+q.table+" WHERE user_id = ?", userID).Scan(q.dst)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return &c, nil
}

// Usage returns the most-used film stock, camera, and lens.
func (s *StatsService) Usage(ctx context.Context, userID int64) (*UsageStats, error) {
	var u UsageStats
	var err error

	u.FilmStock, err = s.topName(ctx,
		`SELECT fs.brand || ' ' || fs.name
		 FROM rolls r
		 JOIN film_stocks fs ON r.film_stock_id = fs.id
		 WHERE r.user_id = ?
		 GROUP BY r.film_stock_id
		 ORDER BY COUNT(*) DESC
		 LIMIT 1`, userID)
	if err != nil {
		return nil, fmt.Errorf("most used film stock: %w", err)
	}

	u.Camera, err = s.topName(ctx,
		`SELECT c.name
		 FROM rolls r
		 JOIN cameras c ON r.camera_id = c.id
		 WHERE r.user_id = ? AND r.camera_id IS NOT NULL
		 GROUP BY r.camera_id
		 ORDER BY COUNT(*) DESC
		 LIMIT 1`, userID)
	if err != nil {
		return nil, fmt.Errorf("most used camera: %w", err)
	}

	u.Lens, err = s.topName(ctx,
		`SELECT l.name
		 FROM frames f
		 JOIN lenses l ON f.lens_id = l.id
		 JOIN rolls r ON f.roll_id = r.id
		 WHERE r.user_id = ? AND f.lens_id IS NOT NULL
		 GROUP BY f.lens_id
		 ORDER BY COUNT(*) DESC
		 LIMIT 1`, userID)
	if err != nil {
		return nil, fmt.Errorf("most used lens: %w", err)
	}

	return &u, nil
}

func (s *StatsService) topName(ctx context.Context, query string, userID int64) (*string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &name, nil
}

// LoadedCameras lists cameras currently holding a loaded or shooting roll.
func (s *StatsService) LoadedCameras(ctx context.Context, userID int64) ([]LoadedCamera, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, fs.brand || ' ' || fs.name, r.status
		 FROM rolls r
		 JOIN cameras c ON r.camera_id = c.id
		 JOIN film_stocks fs ON r.film_stock_id = fs.id
		 WHERE r.user_id = ? AND r.status IN ('loaded', 'shooting')
		 ORDER BY c.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("loaded cameras: %w", err)
	}
	defer rows.Close()

	out := []LoadedCamera{}
	for rows.Next() {
		var lc LoadedCamera
		if err := rows.Scan(&lc.CameraID, &lc.CameraName, &lc.FilmName, &lc.Status); err != nil {
			return nil, fmt.Errorf("loaded cameras: %w", err)
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}
