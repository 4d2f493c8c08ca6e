package messages

// Config messages for configuration loading and validation.
const (
	// ConfigValidationFailed is the sentinel text wrapping validation errors.
	ConfigValidationFailed = "config validation failed"
	// ConfigMissing is the sentinel text for an absent configuration file.
	ConfigMissing = "configuration file not found"

	ConfigMissingFileFmt   = "configuration file not found: %s"
	ConfigInvalidFmt       = "invalid configuration %s: %v"
	ConfigUnknownKeysFmt   = "unrecognized keys in %s: %v"
	ConfigStripPatchesRule = "publish.strip_patches must be \"all\", \"per-crate\", or false"
)
