package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// RollExport is one roll flattened with its film stock, camera, and lens
// names for export.
type RollExport struct {
	RollID        int64   `json:"roll_id"`
	Title         string  `json:"title"`
	FilmStock     string  `json:"film_stock"`
	Format        string  `json:"format"`
	ISO           int     `json:"iso"`
	Camera        string  `json:"camera"`
	Lens          string  `json:"lens"`
	Status        string  `json:"status"`
	Location      string  `json:"location"`
	PushPull      float64 `json:"push_pull"`
	LoadedDate    string  `json:"loaded_date"`
	FinishedDate  string  `json:"finished_date"`
	DevelopedDate string  `json:"developed_date"`
	ScanDate      string  `json:"scan_date"`
	ScanNotes     string  `json:"scan_notes"`
	Notes         string  `json:"notes"`
}

// FrameExport is one frame flattened with its roll title and lens name.
type FrameExport struct {
	RollID       int64  `json:"roll_id"`
	RollTitle    string `json:"roll_title"`
	FrameNumber  int    `json:"frame_number"`
	Subject      string `json:"subject"`
	Aperture     string `json:"aperture"`
	ShutterSpeed string `json:"shutter_speed"`
	Lens         string `json:"lens"`
	DateTaken    string `json:"date_taken"`
	Location     string `json:"location"`
	Rating       *int   `json:"rating"`
	Notes        string `json:"notes"`
}

// ExportService streams a user's rolls and frames as CSV or JSON. Each
// export is a single flattening query, not per-roll lookups.
type ExportService struct {
	db *sql.DB
}

func NewExportService(db *sql.DB) *ExportService {
	return &ExportService{db: db}
}

var rollExportHeader = []string{
	"Roll ID", "Title", "Film Stock", "Format", "ISO", "Camera", "Lens",
	"Status", "Location", "Push/Pull", "Loaded Date", "Finished Date",
	"Developed Date", "Scan Date", "Scan Notes", "Notes",
}

var frameExportHeader = []string{
	"Roll ID", "Roll Title", "Frame #", "Subject", "Aperture",
	"Shutter Speed", "Lens", "Date Taken", "Location", "Rating", "Notes",
}

const exportDateLayout = "2006-01-02 15:04:05"

func exportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(exportDateLayout)
}

func (s *ExportService) rollExports(ctx context.Context, userID int64) ([]RollExport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.title, fs.brand || ' ' || fs.name, fs.format, fs.iso,
		        COALESCE(c.name, ''), COALESCE(l.name, ''),
		        r.status, r.location, r.push_pull_stops,
		        r.loaded_at, r.finished_at, r.developed_at, r.scan_date,
		        r.scan_notes, r.notes
		 FROM rolls r
		 JOIN film_stocks fs ON r.film_stock_id = fs.id
		 LEFT JOIN cameras c ON r.camera_id = c.id
		 LEFT JOIN lenses l ON r.default_lens_id = l.id
		 WHERE r.user_id = ?
		 ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query rolls for export: %w", err)
	}
	defer rows.Close()

	out := []RollExport{}
	for rows.Next() {
		var re RollExport
		var loaded, finished, developed, scan sql.NullTime
		err := rows.Scan(&re.RollID, &re.Title, &re.FilmStock, &re.Format, &re.ISO,
			&re.Camera, &re.Lens, &re.Status, &re.Location, &re.PushPull,
			&loaded, &finished, &developed, &scan, &re.ScanNotes, &re.Notes)
		if err != nil {
			return nil, fmt.Errorf("scan roll for export: %w", err)
		}
		re.LoadedDate = nullTimeString(loaded)
		re.FinishedDate = nullTimeString(finished)
		re.DevelopedDate = nullTimeString(developed)
		re.ScanDate = nullTimeString(scan)
		out = append(out, re)
	}
	return out, rows.Err()
}

func (s *ExportService) frameExports(ctx context.Context, userID int64) ([]FrameExport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.title, f.frame_number, f.subject, f.aperture,
		        f.shutter_speed, COALESCE(l.name, ''), f.date_taken,
		        f.location, f.rating, f.notes
		 FROM frames f
		 JOIN rolls r ON f.roll_id = r.id
		 LEFT JOIN lenses l ON f.lens_id = l.id
		 WHERE r.user_id = ?
		 ORDER BY r.created_at DESC, r.id DESC, f.frame_number ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query frames for export: %w", err)
	}
	defer rows.Close()

	out := []FrameExport{}
	for rows.Next() {
		var fe FrameExport
		var taken sql.NullTime
		var rating sql.NullInt64
		err := rows.Scan(&fe.RollID, &fe.RollTitle, &fe.FrameNumber, &fe.Subject,
			&fe.Aperture, &fe.ShutterSpeed, &fe.Lens, &taken, &fe.Location,
			&rating, &fe.Notes)
		if err != nil {
			return nil, fmt.Errorf("scan frame for export: %w", err)
		}
		fe.DateTaken = nullTimeString(taken)
		if rating.Valid {
			v := int(rating.Int64)
			fe.Rating = &v
		}
		out = append(out, fe)
	}
	return out, rows.Err()
}

func nullTimeString(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(exportDateLayout)
}

// RollsCSV writes all of the user's rolls to w as CSV.
func (s *ExportService) RollsCSV(ctx context.Context, userID int64, w io.Writer) error {
	rolls, err := s.rollExports(ctx, userID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(rollExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rolls {
		pp := ""
		if r.PushPull != 0 {
			pp = strconv.FormatFloat(r.PushPull, 'g', -1, 64)
		}
		record := []string{
			strconv.FormatInt(r.RollID, 10), r.Title, r.FilmStock, r.Format,
			strconv.Itoa(r.ISO), r.Camera, r.Lens, r.Status, r.Location, pp,
			r.LoadedDate, r.FinishedDate, r.DevelopedDate, r.ScanDate,
			r.ScanNotes, r.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FramesCSV writes all frames of the user's rolls to w as CSV.
func (s *ExportService) FramesCSV(ctx context.Context, userID int64, w io.Writer) error {
	frames, err := s.frameExports(ctx, userID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(frameExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, f := range frames {
		rating := ""
		if f.Rating != nil {
			rating = strconv.Itoa(*f.Rating)
		}
		record := []string{
			strconv.FormatInt(f.RollID, 10), f.RollTitle,
			strconv.Itoa(f.FrameNumber), f.Subject, f.Aperture,
			f.ShutterSpeed, f.Lens, f.DateTaken, f.Location, rating, f.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RollsJSON writes all of the user's rolls to w as an indented JSON array.
func (s *ExportService) RollsJSON(ctx context.Context, userID int64, w io.Writer) error {
	rolls, err := s.rollExports(ctx, userID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rolls)
}

// FramesJSON writes all frames of the user's rolls to w as an indented JSON
// array.
func (s *ExportService) FramesJSON(ctx context.Context, userID int64, w io.Writer) error {
	frames, err := s.frameExports(ctx, userID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(frames)
}
