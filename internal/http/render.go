package http

import (
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/mrlokans/quotebuy/internal/analytics"
)

// DateFormat is how dates appear in pages.
const DateFormat = "2006-01-02"

func templateFuncs(checkout Checkout, plausible analytics.Plausible) template.FuncMap {
	return template.FuncMap{
		"datetimefmt": func(t time.Time) string {
			return t.Format(DateFormat)
		},
		// Quote text is sanitised when it is stored.
		"safe": func(s string) template.HTML {
			return template.HTML(s) // #nosec G203
		},
		"price": func() string {
			return formatPrice(checkout.AmountCents, checkout.Currency)
		},
		"analytics": plausible.ScriptTag,
	}
}

func loadTemplates(templates fs.FS, checkout Checkout, plausible analytics.Plausible) *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs(checkout, plausible)).ParseFS(templates, "*.html"))
}

// formatPrice renders cents as a decimal amount, e.g. 100 usd as "1.00 USD".
func formatPrice(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, strings.ToUpper(currency))
}
