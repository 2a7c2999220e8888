package nuget

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packfeed/packfeed/pkg/feed"
)

const entryXML = `<?xml version="1.0" encoding="utf-8"?>
<entry xmlns="http://www.w3.org/2005/Atom"
       xmlns:d="http://schemas.microsoft.com/ado/2007/08/dataservices"
       xmlns:m="http://schemas.microsoft.com/ado/2007/08/dataservices/metadata">
  <title type="text">NUnit</title>
  <content type="application/xml">
    <m:properties>
      <d:Id>NUnit</d:Id>
      <d:Version>3.13.2</d:Version>
      <d:Authors>Charlie Poole, Rob Prouse</d:Authors>
      <d:Description>NUnit is a unit-testing framework.</d:Description>
      <d:DownloadCount m:type="Edm.Int32">158403879</d:DownloadCount>
      <d:IsPrerelease m:type="Edm.Boolean">false</d:IsPrerelease>
      <d:Published m:type="Edm.DateTime">2021-03-22T07:41:12.46</d:Published>
    </m:properties>
  </content>
</entry>`

func TestFromEntry(t *testing.T) {
	page, err := feed.Parse([]byte(entryXML))
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)

	p := FromEntry(page.Entries[0])
	require.Equal(t, "NUnit", p.ID)
	require.Equal(t, "3.13.2", p.Version)
	require.Equal(t, "Charlie Poole, Rob Prouse", p.Authors)
	require.Equal(t, int64(158403879), p.DownloadCount)
	require.False(t, p.Prerelease)
	require.True(t, p.Published.Time().Valid)

	v, err := p.SemVer()
	require.NoError(t, err)
	require.Equal(t, "3.13.2", v.String())
}

func TestLatestPicksHighestSemver(t *testing.T) {
	pkgs := []Package{
		{ID: "NUnit", Version: "3.9.0"},
		{ID: "NUnit", Version: "3.13.2"},
		{ID: "NUnit", Version: "3.13.0-beta1"},
		{ID: "NUnit", Version: "3.10.1"},
	}
	latest, ok := Latest(pkgs)
	require.True(t, ok)
	require.Equal(t, "3.13.2", latest.Version)
}

func TestLatestFallsBackToStringOrder(t *testing.T) {
	// Legacy four-part versions do not parse as semver.
	pkgs := []Package{
		{ID: "Legacy", Version: "1.0.0.1"},
		{ID: "Legacy", Version: "1.0.0.2"},
	}
	latest, ok := Latest(pkgs)
	require.True(t, ok)
	require.Equal(t, "1.0.0.2", latest.Version)
}

func TestLatestEmpty(t *testing.T) {
	_, ok := Latest(nil)
	require.False(t, ok)
}

func TestSearchQueryString(t *testing.T) {
	q := Search(nil, "json parser")
	require.Equal(t,
		"Packages?searchTerm='json parser'&includePrerelease=false", q.String())
}

func TestByIDQueryString(t *testing.T) {
	q := ByID(nil, "NUnit")
	require.Equal(t, "Packages?$filter=Id eq 'NUnit'", q.String())
}
