package video

// video encoder settings for rendered output
type EncodeOptions struct {
	Codec  string
	CRF    int
	Preset string
}

func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Codec:  "libx264",
		CRF:    23,
		Preset: "medium",
	}
}

// fills zero fields from the defaults
func (o EncodeOptions) WithDefaults() EncodeOptions {
	def := DefaultEncodeOptions()
	if o.Codec == "" {
		o.Codec = def.Codec
	}
	if o.CRF <= 0 {
		o.CRF = def.CRF
	}
	if o.Preset == "" {
		o.Preset = def.Preset
	}
	return o
}
