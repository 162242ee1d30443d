package access

// Field sensitivity classification. Every known product field maps to the
// minimum level required to view it; anything not listed here is treated as
// after_rfq so that newly added fields fail closed instead of leaking.

var fieldLevels = map[string]Level{
	// Always visible on the public page.
	"product_name": LevelPublic,
	"category":     LevelPublic,
	"description":  LevelPublic,
	"images":       LevelPublic,
	"origin":       LevelPublic,

	// Revealed after a tracked click.
	"cas_number":     LevelAfterClick,
	"grade":          LevelAfterClick,
	"packaging":      LevelAfterClick,
	"certifications": LevelAfterClick,
	"shelf_life":     LevelAfterClick,

	// Revealed only after a qualifying RFQ.
	"internal_margin":  LevelAfterRFQ,
	"supplier_name":    LevelAfterRFQ,
	"production_notes": LevelAfterRFQ,
}

// groupFields classifies nested sub-objects field by field. The group key
// itself has no tier; each leaf carries its own.
var groupFields = map[string]map[string]Level{
	"chemical_specifications": {
		"molecular_formula": LevelAfterClick,
		"molecular_weight":  LevelAfterClick,
		"purity":            LevelAfterClick,
		"appearance":        LevelPublic,
		"solubility":        LevelAfterClick,
		"heavy_metals":      LevelAfterRFQ,
		"impurity_profile":  LevelAfterRFQ,
	},
	"commercial_terms": {
		"moq":            LevelAfterClick,
		"lead_time":      LevelAfterClick,
		"sample_policy":  LevelAfterClick,
		"price_per_unit": LevelAfterRFQ,
		"payment_terms":  LevelAfterRFQ,
		"incoterms":      LevelAfterRFQ,
	},
}

// Sensitivity returns the minimum level required to view a top-level field.
// Unknown fields require after_rfq.
func Sensitivity(field string) Level {
	if level, ok := fieldLevels[field]; ok {
		return level
	}
	return LevelAfterRFQ
}

// GroupSensitivity returns the minimum level for a field inside a grouped
// sub-object, with the same fail-closed default.
func GroupSensitivity(group, field string) Level {
	if fields, ok := groupFields[group]; ok {
		if level, ok := fields[field]; ok {
			return level
		}
	}
	return LevelAfterRFQ
}

// IsGroup reports whether the field name is a classified sub-object.
func IsGroup(field string) bool {
	_, ok := groupFields[field]
	return ok
}
