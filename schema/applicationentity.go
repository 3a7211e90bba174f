package schema

// ApplicationEntity describes the numeric-code entity family. The
// original kept two diverging copies of this schema; they collapse into
// this single descriptor used on both sides of the persistence
// boundary.
func ApplicationEntity() *Descriptor {
	return &Descriptor{
		Title: "applicationEntity",
		Fields: []Field{
			{Name: "applicationId", Kind: Int, Required: true},
			{Name: "code", Kind: Int, Required: true, Unique: true},
			{Name: "applicationName", Kind: String, Required: true, MinLen: 1, MaxLen: 100},
			{Name: "enabled", Kind: Bool, Default: true},
			{Name: "description", Kind: String, MaxLen: 255},
			{Name: "logo", Kind: String},
			{Name: "favicon", Kind: String},
			{Name: "createdBy", Kind: String, Required: true, Immutable: true},
			{Name: "updatedBy", Kind: String},
			{Name: "createdDate", Kind: DateTime, Required: true, Immutable: true},
			{Name: "updatedDate", Kind: DateTime},
		},
	}
}
