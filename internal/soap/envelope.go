package soap

import (
	"fmt"
	"strings"

	"github.com/spec-kit/incident-bridge/internal/domain"
)

// BuildEnvelope serializes the fields and attachments into the fixed
// XML shape of the backend's setSoport operation. Values are
// interpolated into text nodes without extra escaping; the legacy
// backend chokes on entity-escaped payloads. When there are no
// attachments one empty placeholder item is still emitted, the backend
// requires at least one item element.
func BuildEnvelope(f Fields, attachments []domain.MaterializedImage) string {
	var b strings.Builder

	b.WriteString(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:urn="urn:consult_base">
  <soapenv:Header/>
  <soapenv:Body>
    <urn:setSoport>
`)
	writeField(&b, "nom_usulog", f.NomUsulog)
	writeField(&b, "pwd_usulog", f.PwdUsulog)
	writeField(&b, "nom_usuari", f.NomUsuari)
	writeField(&b, "ema_usuari", f.EmaUsuari)
	writeField(&b, "tex_messag", f.TexMessag)
	writeField(&b, "asu_messag", f.AsuMessag)

	b.WriteString("      <dat_filexx>\n")
	if len(attachments) == 0 {
		b.WriteString(`        <item>
          <file/>
          <fil_sizexx/>
          <nom_filexx/>
          <tip_attach/>
        </item>
`)
	} else {
		for i, att := range attachments {
			fmt.Fprintf(&b, `        <item>
          <file>%s</file>
          <fil_sizexx>%d</fil_sizexx>
          <nom_filexx>file-%d</nom_filexx>
          <tip_attach>%s</tip_attach>
        </item>
`, att.DataURI, att.Size, i+1, att.ContentType)
		}
	}
	b.WriteString("      </dat_filexx>\n")

	writeField(&b, "tel_usuari", f.TelUsuari)
	writeField(&b, "nit_transp", f.NitTransp)
	writeField(&b, "id_project", f.IDProject)

	b.WriteString(`    </urn:setSoport>
  </soapenv:Body>
</soapenv:Envelope>`)

	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "      <%s>%s</%s>\n", name, value, name)
}
