package options

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Codec selects the encoder back-end.
type Codec string

const (
	CodecDSP Codec = "dsp"
	CodecOGG Codec = "ogg"
)

// Format selects the output container.
type Format string

const (
	FormatSON Format = "son"
	FormatSNS Format = "sns"
)

// Extras selects the optional beat-marker treatment baked into the output.
type Extras string

const (
	ExtrasNone        Extras = "none"
	ExtrasJustDance   Extras = "justdance"
	ExtrasCustomBeats Extras = "custombeats"
)

// DefaultSampleRate is applied when the raw selection does not parse.
const DefaultSampleRate = 32000

// Configuration is the canonical, internally consistent encoding
// configuration. Treat it as immutable once resolved.
type Configuration struct {
	Codec        Codec
	OutputFormat Format
	SampleRateHz int
	ForceMono    bool
	Normalize    bool
	FourChannel  bool
	Extras       Extras
	Debug        bool
}

// RawSelection captures the untrusted state of the user-facing controls.
type RawSelection struct {
	Codec              string
	SampleRate         string
	FormatIndex        int
	FourChannelChecked bool
	ExtrasIndex        int
	ForceMono          bool
	Normalize          bool
	Debug              bool
}

// Resolution pairs the resolved configuration with the presentation-state
// directives the caller must apply to its controls.
type Resolution struct {
	Config Configuration
	// FourChannelActionable is false whenever the format is not SON; the
	// caller must disable the four-channel control in that case.
	FourChannelActionable bool
	// FourChannelRawReset instructs the caller to clear the raw four-channel
	// checkbox so a later switch back to SON does not revive a stale check.
	FourChannelRawReset bool
}

// Resolve maps raw control state to a valid Configuration. It never fails:
// invalid combinations are clamped, not rejected. Pure; call it on every
// control change, not just at conversion time, so the four-channel reset
// directive takes effect as soon as the format moves away from SON.
func Resolve(raw RawSelection) Resolution {
	format := FormatSNS
	if raw.FormatIndex == 1 {
		format = FormatSON
	}

	codec := CodecDSP
	if strings.EqualFold(strings.TrimSpace(raw.Codec), string(CodecOGG)) {
		codec = CodecOGG
	}

	rate := DefaultSampleRate
	if parsed, err := strconv.Atoi(strings.TrimSpace(raw.SampleRate)); err == nil && parsed > 0 {
		rate = parsed
	}

	var extras Extras
	switch raw.ExtrasIndex {
	case 1:
		extras = ExtrasJustDance
	case 2:
		extras = ExtrasCustomBeats
	default:
		extras = ExtrasNone
	}

	fourChannel := raw.FourChannelChecked && format == FormatSON

	return Resolution{
		Config: Configuration{
			Codec:        codec,
			OutputFormat: format,
			SampleRateHz: rate,
			ForceMono:    raw.ForceMono,
			Normalize:    raw.Normalize,
			FourChannel:  fourChannel,
			Extras:       extras,
			Debug:        raw.Debug,
		},
		FourChannelActionable: format == FormatSON,
		FourChannelRawReset:   format != FormatSON && raw.FourChannelChecked,
	}
}

// Extension returns the file extension for the container format. Every place a
// name is derived from the format must go through this so save-name
// suggestions, filter labels, and result messages stay consistent.
func (f Format) Extension() string {
	if f == FormatSON {
		return ".son"
	}
	return ".sns"
}

// FilterLabel returns the save-dialog filter label for the format.
func (f Format) FilterLabel() string {
	if f == FormatSON {
		return "SON audio (*.son)"
	}
	return "SNS audio (*.sns)"
}

// DefaultOutputName suggests an output filename for the given input path.
func (f Format) DefaultOutputName(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return stem + f.Extension()
}

// ParseFormat resolves a format name ("son"/"sns", any case) to a Format,
// defaulting to SNS.
func ParseFormat(name string) Format {
	if strings.EqualFold(strings.TrimSpace(name), string(FormatSON)) {
		return FormatSON
	}
	return FormatSNS
}

// FormatIndex returns the raw selection index for a format name, matching the
// index mapping Resolve applies.
func FormatIndex(f Format) int {
	if f == FormatSON {
		return 1
	}
	return 0
}
