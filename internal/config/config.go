package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the service configuration.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	Proc Proc
	EMG  EMG
}

// Proc holds the analysis thresholds. It is passed by value into the
// detector and metric engine and never mutated at run time, so concurrent
// analysis of different trials needs no synchronization.
type Proc struct {
	// Contact threshold as a fraction of body weight (or of peak force
	// when body mass is unknown).
	RelContactFraction float64

	// Minimum peak force as a fraction of body weight for a contact to
	// count as a genuine full-weight strike.
	MinWeightFraction float64

	// Maximum center-of-pressure excursion along the walking direction
	// during contact, in mm. Larger shifts indicate a double contact.
	CoPShiftMax float64

	// Settling time after foot strike before the on-plate geometry check,
	// in milliseconds.
	SettleMs float64

	// Foot length beyond the heel as a multiple of the heel-ankle
	// distance, and the physical marker diameter in mm.
	FootRelativeLen float64
	MarkerDiameter  float64

	// Median filter kernel for force denoising.
	MedianKernel int

	RightFootMarkers []string
	LeftFootMarkers  []string
}

// EMG holds the EMG channel processing configuration.
type EMG struct {
	// Band-pass in Hz applied to raw channel reads.
	Passband []float64

	// Moving RMS window in samples.
	RMSWindow int

	// Raw-signal variance band outside of which a channel is considered
	// disconnected or saturated.
	VarianceMin float64
	VarianceMax float64

	// Channels excluded from validity regardless of signal content.
	DisabledChannels []string

	// Configured anatomical side per channel name ("L"/"R"); channels not
	// listed here match any side.
	ChannelContext map[string]string
}

// DefaultProc returns the analysis thresholds tuned against the reference
// gait lab setup.
func DefaultProc() Proc {
	return Proc{
		RelContactFraction: 0.05,
		MinWeightFraction:  0.9,
		CoPShiftMax:        300,
		SettleMs:           50,
		FootRelativeLen:    3.0,
		MarkerDiameter:     14,
		MedianKernel:       3,
		RightFootMarkers:   []string{"RHEE", "RTOE", "RANK"},
		LeftFootMarkers:    []string{"LHEE", "LTOE", "LANK"},
	}
}

// DefaultEMG returns the default EMG processing configuration.
func DefaultEMG() EMG {
	return EMG{
		Passband:       []float64{10, 400},
		RMSWindow:      31,
		VarianceMin:    1e-10,
		VarianceMax:    1e-4,
		ChannelContext: map[string]string{},
	}
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	port := strings.TrimPrefix(os.Getenv("PORT"), ":")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/gait/gait.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change-me-in-production"
	}

	proc := DefaultProc()
	if v, err := strconv.ParseFloat(os.Getenv("REL_CONTACT_FRACTION"), 64); err == nil && v > 0 {
		proc.RelContactFraction = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("MIN_WEIGHT_FRACTION"), 64); err == nil && v > 0 {
		proc.MinWeightFraction = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("COP_SHIFT_MAX"), 64); err == nil && v > 0 {
		proc.CoPShiftMax = v
	}

	return &Config{
		Port:      port,
		DBPath:    dbPath,
		JWTSecret: jwtSecret,
		Proc:      proc,
		EMG:       DefaultEMG(),
	}
}
