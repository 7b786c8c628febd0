package naming

// Keyword tables feeding name composition. Industry suffixes anchor the name
// to the business domain; the remaining tables supply prefixes for the
// composition patterns.

var industryKeywords = map[string][]string{
	"restaurant":    {"kitchen", "table", "garden", "house", "dining", "bistro"},
	"retail":        {"shop", "store", "market", "place", "corner", "gallery"},
	"service":       {"center", "studio", "lab", "office", "room", "works"},
	"healthcare":    {"care", "medi", "health", "well", "life", "clinic"},
	"education":     {"academy", "school", "class", "campus", "tutor"},
	"technology":    {"tech", "lab", "systems", "logic", "nova"},
	"manufacturing": {"factory", "works", "forge", "maker"},
	"construction":  {"build", "housing", "struct", "stone"},
	"finance":       {"finance", "capital", "invest", "fund"},
	"beauty":        {"beauty", "salon", "glow", "style"},
	"fitness":       {"fit", "gym", "active", "move"},
	"entertainment": {"play", "stage", "show", "arcade"},
	"automotive":    {"auto", "motors", "drive", "garage"},
	"agriculture":   {"farm", "green", "harvest", "field"},
	"logistics":     {"express", "cargo", "link", "route"},
	"other":         {"company", "group", "partners", "collective"},
}

var regionKeywords = map[string][]string{
	"seoul":     {"seoul", "hangang", "namsan", "gangnam", "hongdae"},
	"busan":     {"busan", "haeundae", "gwangan", "taejongdae"},
	"daegu":     {"daegu", "palgong", "suseong"},
	"incheon":   {"incheon", "songdo", "wolmido"},
	"gwangju":   {"gwangju", "mudeung", "chungjang"},
	"daejeon":   {"daejeon", "yuseong", "dunsan"},
	"ulsan":     {"ulsan", "taehwa", "ganjeolgot"},
	"gyeonggi":  {"suwon", "seongnam", "goyang", "yongin"},
	"gangwon":   {"seorak", "pyeongchang", "chuncheon", "gangneung"},
	"chungbuk":  {"cheongju", "jecheon", "danyang"},
	"chungnam":  {"cheonan", "asan", "gongju"},
	"jeonbuk":   {"jeonju", "gunsan", "iksan"},
	"jeonnam":   {"mokpo", "yeosu", "suncheon"},
	"gyeongbuk": {"gyeongju", "andong", "pohang"},
	"gyeongnam": {"changwon", "jinju", "tongyeong"},
	"jeju":      {"jeju", "halla", "seongsan", "udo"},
}

var adjectives = []string{
	"good", "new", "fast", "cozy", "tasty", "pretty", "prime", "smart",
	"modern", "classic", "trendy", "unique",
}

var properNouns = []string{
	"golden", "silver", "diamond", "crystal", "pearl", "ruby",
	"sunshine", "moonlight", "star", "dream", "happy", "lucky",
}

var englishWords = []string{
	"best", "top", "prime", "elite", "royal", "grand", "super", "ultra",
	"neo", "fresh", "pure", "fine",
}

var numberPrefixes = []string{
	"no1", "24h", "365", "seven", "ace", "pro",
}

// genericWords attract a search score penalty: names built on them are hard
// to rank for.
var genericWords = []string{
	"good", "new", "best", "top", "no1",
}

func industryWords(industry string) []string {
	if words, ok := industryKeywords[industry]; ok {
		return words
	}

	return industryKeywords["other"]
}
