package model

// FieldSpec describes one attribute of an entity kind.
type FieldSpec struct {
	Name     string
	Kind     ValueKind
	Nullable bool
}

// Schema lists the attributes of each entity kind. Plan validation uses it
// to reject predicates on missing or incompatible fields before traversal.
var Schema = map[Kind][]FieldSpec{
	KindActor: {
		{Name: FieldIdentity, Kind: KindString},
		{Name: FieldBirthDate, Kind: KindDate, Nullable: true},
	},
	KindDirector: {
		{Name: FieldIdentity, Kind: KindString},
	},
	KindCountry: {
		{Name: FieldName, Kind: KindString},
	},
	KindFilm: {
		{Name: FieldTitle, Kind: KindString},
		{Name: FieldYear, Kind: KindInt},
	},
	KindRole: {
		{Name: FieldCharacter, Kind: KindString},
	},
}

// LookupField returns the FieldSpec for a field of the given kind.
func LookupField(kind Kind, name string) (FieldSpec, bool) {
	for _, f := range Schema[kind] {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}
