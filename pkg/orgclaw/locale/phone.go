package locale

import "strings"

// Profile is the default language and timezone inferred from a phone number.
type Profile struct {
	Language Language
	Timezone string
}

// countryPrefixes maps international dialing prefixes to defaults, longest
// prefix first. Brazilian numbers get their timezone refined by DDD.
var countryPrefixes = []struct {
	prefix string
	p      Profile
}{
	{"351", Profile{PortuguesePT, "Europe/Lisbon"}},
	{"244", Profile{PortuguesePT, "Africa/Luanda"}},
	{"258", Profile{PortuguesePT, "Africa/Maputo"}},
	{"238", Profile{PortuguesePT, "Atlantic/Cape_Verde"}},
	{"239", Profile{PortuguesePT, "Africa/Sao_Tome"}},
	{"245", Profile{PortuguesePT, "Africa/Bissau"}},
	{"55", Profile{PortugueseBR, "America/Sao_Paulo"}},
	{"34", Profile{Spanish, "Europe/Madrid"}},
	{"52", Profile{Spanish, "America/Mexico_City"}},
	{"54", Profile{Spanish, "America/Argentina/Buenos_Aires"}},
	{"56", Profile{Spanish, "America/Santiago"}},
	{"57", Profile{Spanish, "America/Bogota"}},
	{"58", Profile{Spanish, "America/Caracas"}},
	{"51", Profile{Spanish, "America/Lima"}},
	{"591", Profile{Spanish, "America/La_Paz"}},
	{"593", Profile{Spanish, "America/Guayaquil"}},
	{"595", Profile{Spanish, "America/Asuncion"}},
	{"598", Profile{Spanish, "America/Montevideo"}},
	{"506", Profile{Spanish, "America/Costa_Rica"}},
	{"44", Profile{English, "Europe/London"}},
	{"353", Profile{English, "Europe/Dublin"}},
	{"61", Profile{English, "Australia/Sydney"}},
	{"64", Profile{English, "Pacific/Auckland"}},
	{"27", Profile{English, "Africa/Johannesburg"}},
	{"1", Profile{English, "America/New_York"}},
}

// brazilDDDZones maps Brazilian area codes (DDD) to IANA timezones. Most of
// the country follows America/Sao_Paulo; the north and center-west differ.
var brazilDDDZones = map[string]string{
	// São Paulo
	"11": "America/Sao_Paulo", "12": "America/Sao_Paulo", "13": "America/Sao_Paulo",
	"14": "America/Sao_Paulo", "15": "America/Sao_Paulo", "16": "America/Sao_Paulo",
	"17": "America/Sao_Paulo", "18": "America/Sao_Paulo", "19": "America/Sao_Paulo",
	// Rio de Janeiro / Espírito Santo
	"21": "America/Sao_Paulo", "22": "America/Sao_Paulo", "24": "America/Sao_Paulo",
	"27": "America/Sao_Paulo", "28": "America/Sao_Paulo",
	// Minas Gerais
	"31": "America/Sao_Paulo", "32": "America/Sao_Paulo", "33": "America/Sao_Paulo",
	"34": "America/Sao_Paulo", "35": "America/Sao_Paulo", "37": "America/Sao_Paulo",
	"38": "America/Sao_Paulo",
	// Paraná / Santa Catarina
	"41": "America/Sao_Paulo", "42": "America/Sao_Paulo", "43": "America/Sao_Paulo",
	"44": "America/Sao_Paulo", "45": "America/Sao_Paulo", "46": "America/Sao_Paulo",
	"47": "America/Sao_Paulo", "48": "America/Sao_Paulo", "49": "America/Sao_Paulo",
	// Rio Grande do Sul
	"51": "America/Sao_Paulo", "53": "America/Sao_Paulo", "54": "America/Sao_Paulo",
	"55": "America/Sao_Paulo",
	// Distrito Federal / Goiás / Tocantins
	"61": "America/Sao_Paulo", "62": "America/Sao_Paulo", "64": "America/Sao_Paulo",
	"63": "America/Araguaina",
	// Mato Grosso / Mato Grosso do Sul
	"65": "America/Cuiaba", "66": "America/Cuiaba", "67": "America/Campo_Grande",
	// Acre / Rondônia
	"68": "America/Rio_Branco", "69": "America/Porto_Velho",
	// Bahia / Sergipe
	"71": "America/Bahia", "73": "America/Bahia", "74": "America/Bahia",
	"75": "America/Bahia", "77": "America/Bahia", "79": "America/Maceio",
	// Pernambuco / Alagoas / Paraíba / Rio Grande do Norte
	"81": "America/Recife", "87": "America/Recife", "82": "America/Maceio",
	"83": "America/Fortaleza", "84": "America/Fortaleza",
	// Ceará / Piauí
	"85": "America/Fortaleza", "88": "America/Fortaleza",
	"86": "America/Fortaleza", "89": "America/Fortaleza",
	// Pará / Amapá
	"91": "America/Belem", "93": "America/Santarem", "94": "America/Belem",
	"96": "America/Belem",
	// Amazonas / Roraima
	"92": "America/Manaus", "97": "America/Manaus", "95": "America/Boa_Vista",
	// Maranhão
	"98": "America/Fortaleza", "99": "America/Fortaleza",
}

// InferFromPhone returns the default language and timezone for a phone
// number in international format (digits only or with leading +).
func InferFromPhone(phone string) Profile {
	digits := strings.TrimPrefix(strings.TrimSpace(phone), "+")
	digits = stripNonDigits(digits)
	if digits == "" {
		return Profile{DefaultLanguage, "UTC"}
	}

	for _, entry := range countryPrefixes {
		if strings.HasPrefix(digits, entry.prefix) {
			p := entry.p
			if entry.prefix == "55" {
				p.Timezone = brazilTimezone(digits)
			}
			return p
		}
	}
	return Profile{DefaultLanguage, "UTC"}
}

// brazilTimezone refines a Brazilian number's timezone by its DDD.
func brazilTimezone(digits string) string {
	rest := strings.TrimPrefix(digits, "55")
	if len(rest) >= 2 {
		if tz, ok := brazilDDDZones[rest[:2]]; ok {
			return tz
		}
	}
	return "America/Sao_Paulo"
}

// TruncatePhone returns a display-safe form of the number for audit logs:
// prefix plus the last two digits, the middle masked.
func TruncatePhone(phone string) string {
	digits := stripNonDigits(strings.TrimPrefix(strings.TrimSpace(phone), "+"))
	if len(digits) <= 6 {
		return digits
	}
	return digits[:4] + "…" + digits[len(digits)-2:]
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
