// Package nuget is a thin typed layer over pkg/odata for NuGet v2 feeds:
// the Packages entity set, its schema, and helpers for the common
// queries.
package nuget

import (
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/packfeed/packfeed/pkg/feed"
	"github.com/packfeed/packfeed/pkg/odata"
)

// PackagesSchema is the property metadata of the v2 Packages entity
// type, as published in the feed's $metadata document.
var PackagesSchema = odata.Schema{
	"Id":                      "Edm.String",
	"Version":                 "Edm.String",
	"NormalizedVersion":       "Edm.String",
	"Authors":                 "Edm.String",
	"Description":             "Edm.String",
	"Summary":                 "Edm.String",
	"Tags":                    "Edm.String",
	"DownloadCount":           "Edm.Int32",
	"VersionDownloadCount":    "Edm.Int32",
	"IsLatestVersion":         "Edm.Boolean",
	"IsAbsoluteLatestVersion": "Edm.Boolean",
	"IsPrerelease":            "Edm.Boolean",
	"Published":               "Edm.DateTime",
	"Created":                 "Edm.DateTime",
	"PackageSize":             "Edm.Int64",
	"PackageHash":             "Edm.String",
	"PackageHashAlgorithm":    "Edm.String",
	"Dependencies":            "Edm.String",
	"ProjectUrl":              "Edm.String",
	"LicenseUrl":              "Edm.String",
}

// Packages returns the Packages entity set of a feed service.
func Packages(svc odata.Service) *odata.EntitySet {
	return odata.NewEntitySet("Packages", svc, PackagesSchema)
}

// Package is one package record decoded from a feed entry.
type Package struct {
	ID            string
	Version       string
	Authors       string
	Description   string
	DownloadCount int64
	Prerelease    bool
	Published     feed.Value
}

// FromEntry maps a feed entry onto a Package. The entry title carries
// the package id; everything else comes from the property bag.
func FromEntry(e feed.Entry) Package {
	p := Package{ID: e.Title}
	if v, ok := e.Properties.Get("Id"); ok && !v.Null {
		p.ID = v.Raw
	}
	if v, ok := e.Properties.Get("Version"); ok {
		p.Version = v.String().ValueOrZero()
	}
	if v, ok := e.Properties.Get("Authors"); ok {
		p.Authors = v.String().ValueOrZero()
	}
	if v, ok := e.Properties.Get("Description"); ok {
		p.Description = v.String().ValueOrZero()
	}
	if v, ok := e.Properties.Get("DownloadCount"); ok {
		p.DownloadCount = v.Int().ValueOrZero()
	}
	if v, ok := e.Properties.Get("IsPrerelease"); ok {
		p.Prerelease = v.Bool().ValueOrZero()
	}
	if v, ok := e.Properties.Get("Published"); ok {
		p.Published = v
	}
	return p
}

// SemVer parses the package version. NuGet versions are close enough to
// semver for ordering purposes; four-part legacy versions fail here and
// fall back to string order in Latest.
func (p Package) SemVer() (*semver.Version, error) {
	return semver.NewVersion(p.Version)
}

// Latest picks the package with the highest version from a slice. Semver
// order is used where both versions parse; otherwise plain string order
// decides. Returns false for an empty slice.
func Latest(pkgs []Package) (Package, bool) {
	if len(pkgs) == 0 {
		return Package{}, false
	}
	sorted := append([]Package(nil), pkgs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, erri := sorted[i].SemVer()
		vj, errj := sorted[j].SemVer()
		if erri == nil && errj == nil {
			return vi.LessThan(vj)
		}
		return sorted[i].Version < sorted[j].Version
	})
	return sorted[len(sorted)-1], true
}

// Search builds a free-text search query over the Packages set.
func Search(svc odata.Service, term string) *odata.Query {
	return Packages(svc).Query().Search(term)
}

// ByID builds a query for all versions of one package id.
func ByID(svc odata.Service, id string) *odata.Query {
	set := Packages(svc)
	q := set.Query()
	return q.Where(q.Field("Id").Eq(id))
}
