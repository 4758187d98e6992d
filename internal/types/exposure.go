package types

// Exposure is the visibility level of a blueprint.
type Exposure string

const (
	// ExposurePublic blueprints are listed and readable by anyone.
	ExposurePublic Exposure = "public"
	// ExposureUnlisted blueprints are readable by anyone holding the link.
	ExposureUnlisted Exposure = "unlisted"
	// ExposurePrivate blueprints are readable by their owner only.
	ExposurePrivate Exposure = "private"
)

func (e Exposure) Valid() bool {
	switch e {
	case ExposurePublic, ExposureUnlisted, ExposurePrivate:
		return true
	default:
		return false
	}
}
