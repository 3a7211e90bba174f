package schema

import "regexp"

var alphaAndSpaces = regexp.MustCompile(`^[A-Za-z ]*$`)

// Application is the facade-side descriptor: the variant callers
// validate against before anything is persisted (applicationCode 3-20).
func Application() *Descriptor {
	return &Descriptor{
		Title: "applicationModel",
		Fields: []Field{
			{Name: "tenantId", Kind: String, Required: true, MinLen: 1, MaxLen: 64},
			{Name: "applicationCode", Kind: String, Required: true, MinLen: 3, MaxLen: 20, Unique: true},
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

// ApplicationStore is the storage-boundary descriptor: the stricter
// variant the persistence adapter re-checks before writing
// (applicationCode 1-4, alphabetic application names). Both length
// variants are deliberate named presets; see DESIGN.md.
func ApplicationStore() *Descriptor {
	d := Application()
	d.Title = "applicationStore"
	for i := range d.Fields {
		switch d.Fields[i].Name {
		case "applicationCode":
			d.Fields[i].MinLen = 1
			d.Fields[i].MaxLen = 4
		case "applicationName":
			d.Fields[i].Pattern = alphaAndSpaces
			d.Fields[i].PatternMsg = "can contain only alphabets and spaces"
		}
	}
	return d
}
