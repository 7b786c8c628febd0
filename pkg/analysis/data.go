package analysis

type industryProfile struct {
	baseScore      float64
	trait          string
	successFactors []string
	marketTrends   []string
}

type regionProfile struct {
	scoreModifier float64
	trait         string
	advantage     string
	challenge     string
}

type sizeProfile struct {
	scoreModifier float64
	trait         string
	strategy      string
}

var industryData = map[string]industryProfile{
	"restaurant": {
		baseScore: 75,
		trait:     "high customer turnover with a strongly local footprint",
		successFactors: []string{
			"Keep food and service quality consistent",
			"Control ingredient costs with tight inventory management",
		},
		marketTrends: []string{
			"Growing demand for healthy and vegan menus",
			"Rising dependence on delivery platforms",
		},
	},
	"retail": {
		baseScore: 70,
		trait:     "product display and customer touchpoints drive everything",
		successFactors: []string{
			"Integrate online and offline sales channels",
			"Forecast demand to keep inventory lean",
		},
		marketTrends: []string{
			"Omnichannel shopping is the default expectation",
			"Experience-driven stores outperform pure showrooms",
		},
	},
	"service": {
		baseScore: 78,
		trait:     "reputation and repeat clients carry the business",
		successFactors: []string{
			"Build referral loops from satisfied customers",
			"Standardize delivery to keep quality predictable",
		},
		marketTrends: []string{
			"Subscription pricing is displacing one-off engagements",
			"Online booking and reviews decide first impressions",
		},
	},
	"healthcare": {
		baseScore: 85,
		trait:     "trust and clinical credibility dominate customer choice",
		successFactors: []string{
			"Invest in certified staff and visible credentials",
			"Reduce waiting friction with scheduling systems",
		},
		marketTrends: []string{
			"Preventive care and wellness demand keeps climbing",
			"Telehealth extends the service radius",
		},
	},
	"education": {
		baseScore: 72,
		trait:     "outcomes and word of mouth determine enrollment",
		successFactors: []string{
			"Show measurable learner progress",
			"Blend online content with in-person coaching",
		},
		marketTrends: []string{
			"Lifelong reskilling widens the adult market",
			"Hybrid classrooms are now standard",
		},
	},
	"technology": {
		baseScore: 82,
		trait:     "talent density and iteration speed set the ceiling",
		successFactors: []string{
			"Ship early and iterate on real usage",
			"Keep hiring ahead of the delivery roadmap",
		},
		marketTrends: []string{
			"AI-assisted products reset customer expectations",
			"Cloud cost discipline is a competitive lever",
		},
	},
	"manufacturing": {
		baseScore: 76,
		trait:     "throughput, quality control and supply chains decide margins",
		successFactors: []string{
			"Automate repetitive production steps",
			"Diversify suppliers to absorb shocks",
		},
		marketTrends: []string{
			"Reshoring favors regional producers",
			"Small-batch customization commands premiums",
		},
	},
	"construction": {
		baseScore: 68,
		trait:     "project pipeline and financing cycles drive volatility",
		successFactors: []string{
			"Maintain a diversified project backlog",
			"Control subcontractor quality tightly",
		},
		marketTrends: []string{
			"Green building standards reshape procurement",
			"Modular construction compresses timelines",
		},
	},
	"finance": {
		baseScore: 80,
		trait:     "stability and regulatory standing anchor the brand",
		successFactors: []string{
			"Lead with transparent pricing and terms",
			"Automate compliance early",
		},
		marketTrends: []string{
			"Embedded finance expands distribution",
			"Digital-first onboarding is table stakes",
		},
	},
	"beauty": {
		baseScore: 74,
		trait:     "visual identity and social proof pull customers in",
		successFactors: []string{
			"Build a recognizable signature style",
			"Convert clients into social media advocates",
		},
		marketTrends: []string{
			"Clean beauty and skin health lead demand",
			"Booking apps concentrate discovery",
		},
	},
	"fitness": {
		baseScore: 77,
		trait:     "retention economics beat acquisition economics",
		successFactors: []string{
			"Design programs around measurable member progress",
			"Build community to reduce churn",
		},
		marketTrends: []string{
			"Hybrid home-and-gym memberships grow",
			"Wearable data personalizes training",
		},
	},
	"entertainment": {
		baseScore: 71,
		trait:     "novelty and repeat visits are in constant tension",
		successFactors: []string{
			"Refresh the experience on a fixed cadence",
			"Bundle group and event offerings",
		},
		marketTrends: []string{
			"Experience spending outpaces goods spending",
			"Short-form video drives discovery",
		},
	},
	"automotive": {
		baseScore: 79,
		trait:     "trust in workmanship drives lifetime customer value",
		successFactors: []string{
			"Publish transparent diagnostics and pricing",
			"Invest in EV service capability",
		},
		marketTrends: []string{
			"EV adoption shifts the service mix",
			"Subscription maintenance plans spread",
		},
	},
	"agriculture": {
		baseScore: 65,
		trait:     "seasonality and logistics dominate planning",
		successFactors: []string{
			"Contract demand ahead of the season",
			"Shorten the path from field to buyer",
		},
		marketTrends: []string{
			"Direct-to-consumer produce channels grow",
			"Smart-farming tooling lowers input costs",
		},
	},
	"logistics": {
		baseScore: 73,
		trait:     "utilization and route density decide profitability",
		successFactors: []string{
			"Optimize routing before adding capacity",
			"Offer predictable delivery windows",
		},
		marketTrends: []string{
			"Same-day expectations compress schedules",
			"Urban micro-fulfillment reshapes networks",
		},
	},
	"other": {
		baseScore: 70,
		trait:     "differentiation must come from execution",
		successFactors: []string{
			"Pick a narrow niche and own it",
			"Systematize operations early",
		},
		marketTrends: []string{
			"Digital presence decides first contact",
			"Customers reward specialists over generalists",
		},
	},
}

var regionData = map[string]regionProfile{
	"seoul":     {10, "the largest consumer market with trend-setting customers", "massive customer base and strong infrastructure", "very high rent and fierce competition"},
	"busan":     {5, "a stable second-city market with tourism inflow", "moderate costs with tourist demand", "smaller market than the capital"},
	"daegu":     {0, "a traditional commercial hub with conservative spending", "loyal customer base and reasonable costs", "slow adoption of new trends"},
	"incheon":   {3, "a gateway city anchored by the airport and Songdo", "transit population and new-town growth", "spending leaks to nearby Seoul"},
	"gwangju":   {-2, "a regional center with a compact downtown market", "low entry costs", "limited market size"},
	"daejeon":   {2, "a research-and-education city with steady demand", "stable professional customer base", "modest discretionary spending"},
	"ulsan":     {1, "an industrial city with high average incomes", "strong worker purchasing power", "dependence on manufacturing cycles"},
	"gyeonggi":  {7, "large new-town populations around the capital", "fast-growing residential demand", "commuter spending flows into Seoul"},
	"gangwon":   {-3, "a tourism-driven market with strong seasonality", "resort and leisure traffic", "thin off-season demand"},
	"chungbuk":  {-2, "a compact inland market with steady industry", "low operating costs", "small addressable population"},
	"chungnam":  {0, "industrial parks and growing satellite cities", "expanding worker population", "dispersed demand across towns"},
	"jeonbuk":   {-3, "a heritage region with strong food culture", "distinct local identity to build on", "shrinking young population"},
	"jeonnam":   {-3, "coastal tourism and primary industries", "regional specialties and port traffic", "aging demographics"},
	"gyeongbuk": {-2, "a conservative market spread across many towns", "heritage tourism linkage", "slow trend uptake"},
	"gyeongnam": {1, "a manufacturing belt adjoining the Busan market", "young industrial workforce", "sensitivity to factory cycles"},
	"jeju":      {-1, "a tourism-centric island economy", "fifteen million visitors a year", "extreme seasonality and logistics costs"},
}

var sizeData = map[string]sizeProfile{
	"small":  {-5, "lean operations with fast decisions", "Target a niche and maximize customer loyalty"},
	"medium": {0, "systematic operations with regional recognition", "Standardize the core offering and build the brand"},
	"large":  {5, "scale economics and brand power", "Expand market share and invest in innovation"},
}

func industryProfileFor(industry string) industryProfile {
	if profile, ok := industryData[industry]; ok {
		return profile
	}

	return industryData["other"]
}

func regionProfileFor(region string) regionProfile {
	if profile, ok := regionData[region]; ok {
		return profile
	}

	return regionData["seoul"]
}

func sizeProfileFor(size string) sizeProfile {
	if profile, ok := sizeData[size]; ok {
		return profile
	}

	return sizeData["medium"]
}
