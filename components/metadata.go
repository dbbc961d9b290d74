package components

// FieldDescriptor describes a component field for UI display.
type FieldDescriptor struct {
	ID           string  // Unique identifier
	Label        string  // Display name
	Format       string  // Printf format (e.g., "%.2f")
	Min          float32 // Minimum value (for bars)
	Max          float32 // Maximum value (for bars)
	IsCentered   bool    // True for centered bar display
	IsBar        bool    // True to render as progress bar
	ShowWhenZero bool    // Show even when value is zero
	Group        string  // Logical grouping
}

// KoiFieldDescriptors returns metadata for Koi fields.
func KoiFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "speed", Label: "Speed", Format: "%.2f", Min: 0, Max: 2, IsBar: true, ShowWhenZero: true, Group: "motion"},
		{ID: "heading", Label: "Heading", Format: "%.2f", Min: -3.14159, Max: 3.14159, IsCentered: true, ShowWhenZero: true, Group: "motion"},
		{ID: "force", Label: "Force", Format: "%.3f", Min: 0, Max: 0.3, IsBar: true, Group: "motion"},
		{ID: "neighbors", Label: "Nearby", Format: "%.0f", ShowWhenZero: true, Group: "motion"},
		{ID: "size", Label: "Size", Format: "%.2f", Min: 0, Max: 1.5, IsBar: true, ShowWhenZero: true, Group: "body"},
		{ID: "length", Label: "Length", Format: "%.2f", Min: 0, Max: 1.5, IsBar: true, ShowWhenZero: true, Group: "body"},
		{ID: "tail", Label: "Tail", Format: "%.2f", Min: 0, Max: 2, IsBar: true, ShowWhenZero: true, Group: "body"},
		{ID: "speed_mult", Label: "Pace", Format: "%.2f", Min: 0, Max: 1.5, IsBar: true, ShowWhenZero: true, Group: "body"},
		{ID: "independence", Label: "Solo %", Format: "%.2f", Min: 0, Max: 0.2, IsBar: true, Group: "behavior"},
		{ID: "history", Label: "History", Format: "%.0f", Group: "behavior"},
		{ID: "reversals", Label: "Reversals", Format: "%.0f", Group: "behavior"},
	}
}

// KoiGroups returns the logical groupings for koi fields.
func KoiGroups() []string {
	return []string{"motion", "body", "behavior"}
}

// GetKoiValue extracts a koi field value by ID.
func GetKoiValue(k *Koi, fieldID string) float32 {
	switch fieldID {
	case "speed":
		return float32(k.Speed())
	case "heading":
		return float32(k.Heading())
	case "force":
		return float32(k.ForceWeight)
	case "neighbors":
		return float32(k.Neighbors)
	case "size":
		return float32(k.SizeMultiplier)
	case "length":
		return float32(k.LengthMultiplier)
	case "tail":
		return float32(k.TailLength)
	case "speed_mult":
		return float32(k.SpeedMultiplier)
	case "independence":
		return float32(k.Behavior.IndependenceChance)
	case "history":
		return float32(k.History.Len())
	case "reversals":
		return float32(k.History.Reversals())
	default:
		return 0
	}
}
