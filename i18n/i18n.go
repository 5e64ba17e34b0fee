// Package i18n carries the locale-dependent strings the core needs: the
// language names embedded into inference prompts and the daily leadership
// boost quotes. The full UI translation tables live with the presentation
// layer, not here.
package i18n

import "time"

// Supported locale tags.
const (
	LocaleEnglish   = "en"
	LocaleZulu      = "zu"
	LocaleAfrikaans = "af"
	LocaleXhosa     = "xh"
)

const DefaultLocale = LocaleEnglish

var languageNames = map[string]string{
	LocaleEnglish:   "English",
	LocaleZulu:      "isiZulu",
	LocaleAfrikaans: "Afrikaans",
	LocaleXhosa:     "isiXhosa",
}

// LanguageName returns the response-language name used in the inference
// prompt. Unknown tags fall back to English.
func LanguageName(locale string) string {
	if name, ok := languageNames[locale]; ok {
		return name
	}
	return languageNames[DefaultLocale]
}

// IsSupported reports whether the locale tag is one of the shipped
// locales.
func IsSupported(locale string) bool {
	_, ok := languageNames[locale]
	return ok
}

var boosts = map[string][]string{
	LocaleEnglish: {
		"'Leadership is not about being in charge. It's about taking care of those in your charge.' - Simon Sinek",
		"A leader is one who knows the way, goes the way, and shows the way. - John C. Maxwell",
		"Before you are a leader, success is all about growing yourself. When you become a leader, success is all about growing others. - Jack Welch",
		"The function of leadership is to produce more leaders, not more followers. - Ralph Nader",
	},
	LocaleZulu: {
		"'Ubuholi akukhona nje ukuba ngumphathi. Kumayelana nokunakekela labo abaphansi kwakho.' - Simon Sinek",
		"Umholi ungumuntu owazi indlela, ohamba indlela, futhi obonisa indlela. - John C. Maxwell",
		"Ngaphambi kokuba ube umholi, impumelelo imayelana nokuzikhulisa wena. Lapho usuba umholi, impumelelo imayelana nokukhulisa abanye. - Jack Welch",
		"Umsebenzi wobuholi ukukhiqiza abaholi abaningi, hhayi abalandeli abaningi. - Ralph Nader",
	},
	LocaleAfrikaans: {
		"'Leierskap gaan nie oor om in beheer te wees nie. Dit gaan daaroor om te sorg vir diegene in jou beheer.' - Simon Sinek",
		"’n Leier is een wat die pad ken, die pad loop en die pad wys. - John C. Maxwell",
		"Voordat jy ’n leier is, gaan sukses daaroor om jouself te laat groei. Wanneer jy ’n leier word, gaan sukses daaroor om ander te laat groei. - Jack Welch",
		"Die funksie van leierskap is om meer leiers te produseer, nie meer volgelinge nie. - Ralph Nader",
	},
	LocaleXhosa: {
		"'Ubunkokeli asikuko ukuba yintloko. Bubukho bokukhathalela abo ubakhokelayo.' - Simon Sinek",
		"Inkokeli yileyo eyazi indlela, ehamba indlela, kwaye ibonise indlela. - John C. Maxwell",
		"Phambi kokuba ube yinkokeli, impumelelo imalunga nokuzikhulisa wena. Xa usiba yinkokeli, impumelelo imalunga nokukhu lula abanye. - Jack Welch",
		"Umsebenzi wobunkokeli kukuzala iinkokeli ezingaphezulu, hayi abalandeli abaninzi. - Ralph Nader",
	},
}

// DailyBoost returns the leadership quote for the given day, rotating
// through the locale's quote list by day of year.
func DailyBoost(locale string, day time.Time) string {
	quotes, ok := boosts[locale]
	if !ok {
		quotes = boosts[DefaultLocale]
	}
	return quotes[day.YearDay()%len(quotes)]
}
