package domain

import "time"

// RollStatus is the lifecycle state of a roll. Transitions are monotonic and
// performed only by service.RollService.
type RollStatus string

const (
	StatusFresh      RollStatus = "fresh"
	StatusLoaded     RollStatus = "loaded"
	StatusShooting   RollStatus = "shooting"
	StatusFinished   RollStatus = "finished"
	StatusDeveloping RollStatus = "developing"
	StatusDeveloped  RollStatus = "developed"
)

// RollStatuses lists every status in lifecycle order.
var RollStatuses = []RollStatus{
	StatusFresh, StatusLoaded, StatusShooting,
	StatusFinished, StatusDeveloping, StatusDeveloped,
}

// DevBranch selects the development path out of the finished state.
type DevBranch string

const (
	DevBranchLab  DevBranch = "lab"
	DevBranchSelf DevBranch = "self"
)

const (
	CameraTypeFilm    = "film"
	CameraTypeDigital = "digital"
)

const (
	MediaTypeAnalog  = "analog"
	MediaTypeDigital = "digital"
)

// ProcessTypes are the development chemistries offered for self development.
var ProcessTypes = []string{"C-41", "E-6", "B&W", "ECN-2", "Other"}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Camera struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"-"`
	Name          string    `json:"name"`
	Make          string    `json:"make"`
	Model         string    `json:"model"`
	SerialNumber  string    `json:"serial_number"`
	YearBuilt     *int      `json:"year_built"`
	YearPurchased *int      `json:"year_purchased"`
	PurchasedFrom *string   `json:"purchased_from"`
	Description   string    `json:"description"`
	Notes         string    `json:"notes"`
	CameraType    string    `json:"camera_type"` // "film" or "digital"
	SensorSize    *string   `json:"sensor_size"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CameraIssue struct {
	ID           int64      `json:"id"`
	CameraID     int64      `json:"camera_id"`
	Description  string     `json:"description"`
	DateNoted    time.Time  `json:"date_noted"`
	Resolved     bool       `json:"resolved"`
	ResolvedDate *time.Time `json:"resolved_date"`
	Notes        string     `json:"notes"`
}

type Lens struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"-"`
	Name             string    `json:"name"`
	Make             string    `json:"make"`
	Model            string    `json:"model"`
	FocalLength      string    `json:"focal_length"`
	MaxAperture      *float64  `json:"max_aperture"`
	FilterDiameter   *float64  `json:"filter_diameter"`
	YearBuilt        *int      `json:"year_built"`
	YearPurchased    *int      `json:"year_purchased"`
	PurchaseLocation *string   `json:"purchase_location"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type LensNote struct {
	ID        int64     `json:"id"`
	LensID    int64     `json:"lens_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FilmStock is a catalogue definition of a film type, not a physical roll.
// QuantityOnHand is decremented when a roll is created from the stock and is
// never negative.
type FilmStock struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"-"`
	Brand          string    `json:"brand"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`       // "color" or "black_and_white"
	MediaType      string    `json:"media_type"` // "analog" or "digital"
	ISO            int       `json:"iso"`
	Format         string    `json:"format"`
	FramesPerRoll  int       `json:"frames_per_roll"`
	QuantityOnHand int       `json:"quantity_on_hand"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}

type Roll struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"-"`
	FilmStockID   int64      `json:"film_stock_id"`
	CameraID      *int64     `json:"camera_id"`
	DefaultLensID *int64     `json:"default_lens_id"`
	Status        RollStatus `json:"status"`
	LoadedAt      *time.Time `json:"loaded_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	SentAt        *time.Time `json:"sent_at"`
	DevelopedAt   *time.Time `json:"developed_at"`
	Notes         string     `json:"notes"`
	Title         string     `json:"title"`
	PushPullStops float64    `json:"push_pull_stops"`
	ScanDate      *time.Time `json:"scan_date"`
	ScanNotes     string     `json:"scan_notes"`
	Location      string     `json:"location"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Frame struct {
	ID           int64      `json:"id"`
	RollID       int64      `json:"roll_id"`
	FrameNumber  int        `json:"frame_number"`
	Subject      string     `json:"subject"`
	Aperture     string     `json:"aperture"`
	ShutterSpeed string     `json:"shutter_speed"`
	LensID       *int64     `json:"lens_id"`
	DateTaken    *time.Time `json:"date_taken"`
	Location     string     `json:"location"`
	Rating       *int       `json:"rating"`
	Notes        string     `json:"notes"`
}

// RollDevelopment records how a roll was developed. Exactly one row per roll.
// Lab fields are set on the lab branch, ProcessType on the self branch.
type RollDevelopment struct {
	ID          int64     `json:"id"`
	RollID      int64     `json:"roll_id"`
	DevType     DevBranch `json:"dev_type"`
	ProcessType *string   `json:"process_type"`
	LabName     *string   `json:"lab_name"`
	LabContact  *string   `json:"lab_contact"`
	CostAmount  *float64  `json:"cost_amount"`
	RecipeID    *int64    `json:"recipe_id"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

// DevelopmentStep is a realized step of a roll's development: a snapshot, not
// a reference. Editing a recipe later never changes these rows.
type DevelopmentStep struct {
	ID              int64  `json:"id"`
	DevelopmentID   int64  `json:"development_id"`
	StepOrder       int    `json:"step_order"`
	ChemicalName    string `json:"chemical_name"`
	Temperature     string `json:"temperature"`
	DurationSeconds *int   `json:"duration_seconds"`
	Agitation       string `json:"agitation"`
	Notes           string `json:"notes"`
}

type DevRecipe struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	Name        string    `json:"name"`
	ProcessType string    `json:"process_type"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

type DevRecipeStep struct {
	ID              int64  `json:"id"`
	RecipeID        int64  `json:"recipe_id"`
	StepOrder       int    `json:"step_order"`
	ChemicalName    string `json:"chemical_name"`
	Temperature     string `json:"temperature"`
	DurationSeconds *int   `json:"duration_seconds"`
	Agitation       string `json:"agitation"`
	Notes           string `json:"notes"`
}

// CloudSettings is the single per-user row of linked-account state. It is
// overwritten in place, never versioned.
type CloudSettings struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"-"`
	Provider           string     `json:"provider"`
	RemoteFolder       string     `json:"remote_folder"`
	LastSyncAt         *time.Time `json:"last_sync_at"`
	AccountDisplayName string     `json:"account_display_name"`
	AccountEmail       string     `json:"account_email"`
	Enabled            bool       `json:"enabled"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
