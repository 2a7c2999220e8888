package feed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const packagesPage = `<?xml version="1.0" encoding="utf-8"?>
<feed xml:base="https://feed.example.com/api/v2"
      xmlns="http://www.w3.org/2005/Atom"
      xmlns:d="http://schemas.microsoft.com/ado/2007/08/dataservices"
      xmlns:m="http://schemas.microsoft.com/ado/2007/08/dataservices/metadata">
  <title type="text">Packages</title>
  <link rel="self" href="https://feed.example.com/api/v2/Packages"/>
  <link rel="next" href="https://feed.example.com/api/v2/Packages?$skip=2"/>
  <entry>
    <id>https://feed.example.com/api/v2/Packages(Id='NUnit',Version='3.13.2')</id>
    <title type="text">NUnit</title>
    <updated>2021-03-22T07:41:12Z</updated>
    <content type="application/xml">
      <m:properties>
        <d:Id>NUnit</d:Id>
        <d:Version>3.13.2</d:Version>
        <d:DownloadCount m:type="Edm.Int32">158403879</d:DownloadCount>
        <d:IsPrerelease m:type="Edm.Boolean">false</d:IsPrerelease>
        <d:Published m:type="Edm.DateTime">2021-03-22T07:41:12.46</d:Published>
        <d:LicenseUrl m:null="true"/>
      </m:properties>
    </content>
  </entry>
  <entry>
    <id>https://feed.example.com/api/v2/Packages(Id='Moq',Version='4.16.1')</id>
    <title type="text">Moq</title>
    <updated>2021-02-24T18:00:00Z</updated>
    <content type="application/xml">
      <m:properties>
        <d:Id>Moq</d:Id>
        <d:Version>4.16.1</d:Version>
      </m:properties>
    </content>
  </entry>
</feed>`

const singleEntry = `<?xml version="1.0" encoding="utf-8"?>
<entry xmlns="http://www.w3.org/2005/Atom"
       xmlns:d="http://schemas.microsoft.com/ado/2007/08/dataservices"
       xmlns:m="http://schemas.microsoft.com/ado/2007/08/dataservices/metadata">
  <title type="text">NUnit</title>
  <m:properties>
    <d:Id>NUnit</d:Id>
    <d:Version>3.13.2</d:Version>
  </m:properties>
</entry>`

func TestParseFeedPage(t *testing.T) {
	page, err := Parse([]byte(packagesPage))
	require.NoError(t, err)

	require.Equal(t, "https://feed.example.com/api/v2/Packages?$skip=2", page.NextLink)
	require.Len(t, page.Entries, 2)
	require.Equal(t, "NUnit", page.Entries[0].Title)
	require.Equal(t, "Moq", page.Entries[1].Title)

	props := page.Entries[0].Properties
	require.Equal(t,
		[]string{"Id", "Version", "DownloadCount", "IsPrerelease", "Published", "LicenseUrl"},
		props.Names())

	version, ok := props.Get("Version")
	require.True(t, ok)
	require.Equal(t, "3.13.2", version.String().ValueOrZero())

	downloads, ok := props.Get("DownloadCount")
	require.True(t, ok)
	require.Equal(t, "Edm.Int32", downloads.Type)
	require.Equal(t, int64(158403879), downloads.Int().ValueOrZero())

	pre, ok := props.Get("IsPrerelease")
	require.True(t, ok)
	require.False(t, pre.Bool().ValueOrZero())

	published, ok := props.Get("Published")
	require.True(t, ok)
	require.True(t, published.Time().Valid)
	require.Equal(t, 2021, published.Time().Time.Year())
}

func TestParseNullProperty(t *testing.T) {
	page, err := Parse([]byte(packagesPage))
	require.NoError(t, err)

	license, ok := page.Entries[0].Properties.Get("LicenseUrl")
	require.True(t, ok)
	require.True(t, license.Null)
	require.False(t, license.String().Valid)
	require.False(t, license.Int().Valid)
}

func TestParseSingleEntryDocument(t *testing.T) {
	page, err := Parse([]byte(singleEntry))
	require.NoError(t, err)
	require.Empty(t, page.NextLink)
	require.Len(t, page.Entries, 1)

	id, ok := page.Entries[0].Properties.Get("Id")
	require.True(t, ok)
	require.Equal(t, "NUnit", id.Raw)
}

func TestNextLink(t *testing.T) {
	link, err := NextLink([]byte(packagesPage))
	require.NoError(t, err)
	require.Equal(t, "https://feed.example.com/api/v2/Packages?$skip=2", link)

	link, err = NextLink([]byte(singleEntry))
	require.NoError(t, err)
	require.Empty(t, link)
}

func TestParseRejectsNonAtomDocuments(t *testing.T) {
	_, err := Parse([]byte("<html><body>gateway timeout</body></html>"))
	require.ErrorContains(t, err, "unexpected root element")

	_, err = Parse([]byte(""))
	require.ErrorContains(t, err, "empty response body")
}

func TestValueAccessorsOnGarbage(t *testing.T) {
	v := Value{Raw: "not-a-number"}
	require.False(t, v.Int().Valid)
	require.False(t, v.Float().Valid)
	require.False(t, v.Bool().Valid)
	require.False(t, v.Time().Valid)
	require.Equal(t, "not-a-number", v.String().ValueOrZero())
}
