package config

// ConfigDiff describes which sections changed between two configs.
type ConfigDiff struct {
	LogLevelChanged  bool
	NewLogLevel      LogLevel
	DetectorChanged  bool
	AudioChanged     bool
	PitchChanged     bool
	NotifyChanged    bool
	TelemetryChanged bool
}

// Diff compares old and new configs section by section.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{
		DetectorChanged:  old.Detector != new.Detector,
		AudioChanged:     old.Audio != new.Audio,
		PitchChanged:     old.Pitch != new.Pitch,
		TelemetryChanged: old.Telemetry != new.Telemetry,
	}
	if old.LogLevel != new.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.LogLevel
	}
	d.NotifyChanged = !old.Notify.Equal(new.Notify)
	return d
}

// Sections returns the YAML names of the changed sections.
func (d ConfigDiff) Sections() []string {
	var s []string
	if d.LogLevelChanged {
		s = append(s, "log_level")
	}
	if d.DetectorChanged {
		s = append(s, "detector")
	}
	if d.AudioChanged {
		s = append(s, "audio")
	}
	if d.PitchChanged {
		s = append(s, "pitch")
	}
	if d.NotifyChanged {
		s = append(s, "notify")
	}
	if d.TelemetryChanged {
		s = append(s, "telemetry")
	}
	return s
}

// RequiresRestart reports whether a change cannot be applied to a running
// input. The audio format, pitch analyzer and telemetry sinks are fixed once
// the input is open.
func (d ConfigDiff) RequiresRestart() bool {
	return d.AudioChanged || d.PitchChanged || d.TelemetryChanged
}
