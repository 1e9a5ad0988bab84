package refdata

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"sync"

	"github.com/speedata/cxpath"
)

//go:embed reference.xml
var referenceXML []byte

// Country holds the static metadata the validator needs for one ISO
// 3166-1 alpha-2 jurisdiction: its expected TIN format, its default
// currency, and whether it is in scope for Pillar Two safe-harbour checks.
type Country struct {
	Code       string
	Currency   string
	TINPattern *regexp.Regexp
	Pillar2    bool
}

var (
	loadOnce    sync.Once
	loadErr     error
	countries   map[string]Country
	errorCodes  map[string]ErrorCode
	pillar2Jurs map[string]Pillar2Jurisdiction
)

// ensureLoaded parses reference.xml exactly once, on first use, via
// cxpath the same way the teacher's invoice parser walks CII/UBL XML.
func ensureLoaded() {
	loadOnce.Do(func() {
		ctx, err := cxpath.NewFromReader(bytes.NewReader(referenceXML))
		if err != nil {
			loadErr = fmt.Errorf("refdata: cannot parse reference.xml: %w", err)
			return
		}

		root := ctx.Root()
		countries = make(map[string]Country)

		for c := range root.Each("//Countries/Country") {
			code := c.Eval("@code").String()
			pattern := c.Eval("@tinPattern").String()

			re, reErr := regexp.Compile(pattern)
			if reErr != nil {
				loadErr = fmt.Errorf("refdata: country %s has invalid tinPattern %q: %w", code, pattern, reErr)
				return
			}

			countries[code] = Country{
				Code:       code,
				Currency:   c.Eval("@currency").String(),
				TINPattern: re,
				Pillar2:    c.Eval("@pillar2").String() == "true",
			}
		}

		errorCodes = make(map[string]ErrorCode)
		for e := range root.Each("//ErrorCodes/ErrorCode") {
			code := e.Eval("@code").String()
			errorCodes[code] = ErrorCode{
				Code:        code,
				Severity:    Severity(e.Eval("@severity").String()),
				Description: e.Eval("@description").String(),
				Remediation: e.Eval("@remediation").String(),
			}
		}

		pillar2Jurs = make(map[string]Pillar2Jurisdiction)
		for j := range root.Each("//Pillar2Jurisdictions/Jurisdiction") {
			code := j.Eval("@code").String()
			pillar2Jurs[code] = Pillar2Jurisdiction{
				Code:          code,
				IIR:           j.Eval("@iir").String() == "true",
				UTPR:          j.Eval("@utpr").String() == "true",
				QDMTT:         j.Eval("@qdmtt").String() == "true",
				EffectiveDate: j.Eval("@effectiveDate").String(),
				AvgPayroll:    j.Eval("@avgPayroll").String(),
			}
		}
	})
}

// Load forces the reference data to be parsed and returns any error
// encountered. Every other lookup function calls this internally; callers
// only need it to fail fast at startup instead of on first validation.
func Load() error {
	ensureLoaded()
	return loadErr
}

// CountryByCode looks up static metadata for an ISO 3166-1 alpha-2 code,
// resolving the "EL" Greek VAT-prefix alias to "GR" like IsValidCountryCode
// does. The boolean result reports whether the code is known.
func CountryByCode(code string) (Country, bool) {
	ensureLoaded()
	if code == "EL" {
		code = "GR"
	}
	c, ok := countries[code]
	return c, ok
}

// IsValidCountryCode reports whether code is a recognized ISO 3166-1
// alpha-2 country or one of the accepted Greek VAT-prefix aliases used in
// EU filings ("EL").
func IsValidCountryCode(code string) bool {
	ensureLoaded()
	if code == "EL" {
		_, ok := countries["GR"]
		return ok
	}
	_, ok := countries[code]
	return ok
}

// AllCountries returns every known country, sorted is not guaranteed.
func AllCountries() map[string]Country {
	ensureLoaded()
	out := make(map[string]Country, len(countries))
	for k, v := range countries {
		out[k] = v
	}
	return out
}
