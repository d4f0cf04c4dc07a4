package domain

// TableQualifier separates a database home from a table name in a Location.
const TableQualifier = "/table:"

// Location identifies a table inside a database home directory. Its string
// form is "<home>/table:<name>".
type Location struct {
	Home  string `json:"home" yaml:"home"`
	Table string `json:"table" yaml:"table"`
}

// NewLocation returns the location of table under home.
func NewLocation(home, table string) Location {
	return Location{Home: home, Table: table}
}

// String returns the fully-qualified form of the location.
func (l Location) String() string {
	return l.Home + TableQualifier + l.Table
}

// MirrorPair is a base table and the table expected to mirror it. Both sides
// live in the same database home.
type MirrorPair struct {
	Base   Location `json:"base" yaml:"base"`
	Mirror Location `json:"mirror" yaml:"mirror"`
}

// NewMirrorPair returns the pair (base, mirror) rooted at home.
func NewMirrorPair(home, base, mirror string) MirrorPair {
	return MirrorPair{
		Base:   NewLocation(home, base),
		Mirror: NewLocation(home, mirror),
	}
}

// String formats the pair as "[<base>, <mirror>]".
func (p MirrorPair) String() string {
	return "[" + p.Base.String() + ", " + p.Mirror.String() + "]"
}
