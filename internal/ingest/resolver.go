package ingest

import (
	"github.com/KaramelBytes/assetboard-cli/internal/asset"
)

// Candidate column names per role, in priority order. Names are compared
// against normalized (trimmed, title-cased) headers, so "KPH" and "kph" both
// arrive as "Kph".
var defaultCandidates = map[asset.Role][]string{
	asset.RoleUnit:      {"Nama Satker", "Nama Satker*", "Kph", "Kesatuan Pengelolaan Hutan"},
	asset.RoleCondition: {"Kondisi", "Kondisi Aset", "Kondisi Aset*", "Keadaan", "Condition"},
	asset.RoleCategory:  {"Jenis Aset", "Jenis", "Kategori", "Tipe", "Type", "Klasifikasi"},
	asset.RoleDate:      {"Tanggal Perolehan", "Tanggal", "Tanggal*", "Date", "Tanggal Pembelian"},
	asset.RoleValue:     {"Nilai Aset", "Nilai Aset*", "Nilai", "Harga", "Value", "Nilai Perolehan*", "Harga Perolehan"},
}

// Resolver maps column headers to semantic roles.
type Resolver struct {
	candidates map[asset.Role][]string
}

// NewResolver builds a resolver from the built-in candidates followed by extra
// aliases. Extras are normalized like headers and never outrank built-ins.
func NewResolver(extra map[asset.Role][]string) *Resolver {
	names := newNamer()
	c := make(map[asset.Role][]string, len(defaultCandidates))
	for _, role := range asset.AllRoles() {
		list := append([]string(nil), defaultCandidates[role]...)
		seen := make(map[string]struct{}, len(list))
		for _, n := range list {
			seen[n] = struct{}{}
		}
		for _, alias := range extra[role] {
			n := names.normalize(alias)
			if n == "" {
				continue
			}
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			list = append(list, n)
		}
		c[role] = list
	}
	return &Resolver{candidates: c}
}

// Candidates returns the ordered names consulted for role.
func (r *Resolver) Candidates(role asset.Role) []string {
	return append([]string(nil), r.candidates[role]...)
}

// Resolve returns the first candidate for role present in columns.
func (r *Resolver) Resolve(columns []string, role asset.Role) (string, bool) {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}
	return r.resolve(present, role)
}

func (r *Resolver) resolve(present map[string]struct{}, role asset.Role) (string, bool) {
	for _, name := range r.candidates[role] {
		if _, ok := present[name]; ok {
			return name, true
		}
	}
	return "", false
}

// ResolveAll resolves every role against columns.
func (r *Resolver) ResolveAll(columns []string) asset.RoleMap {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}
	m := make(map[asset.Role]string)
	for _, role := range asset.AllRoles() {
		if col, ok := r.resolve(present, role); ok {
			m[role] = col
		}
	}
	return asset.NewRoleMap(m)
}
