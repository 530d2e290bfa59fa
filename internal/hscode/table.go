package hscode

// DefaultCode es el código usado cuando ninguna palabra clave coincide
const DefaultCode = "9983.99.00"

// DefaultKeyword identifica la entrada de respaldo de la tabla
const DefaultKeyword = "default"

// Entry representa una palabra clave normalizada y su código HS
type Entry struct {
	Keyword  string `json:"keyword"`
	Code     string `json:"hs_code"`
	Category string `json:"category"`
}

// pakistanTable contiene los servicios y productos habituales de una consultora tributaria
var pakistanTable = []Entry{
	// Tax Consultancy Services
	{Keyword: "tax consultation", Code: "9983.11.00", Category: "tax consultancy"},
	{Keyword: "tax filing", Code: "9983.11.00", Category: "tax consultancy"},
	{Keyword: "tax planning", Code: "9983.11.00", Category: "tax consultancy"},
	{Keyword: "tax compliance", Code: "9983.11.00", Category: "tax consultancy"},
	{Keyword: "tax audit", Code: "9983.11.00", Category: "tax consultancy"},
	{Keyword: "tax advisory", Code: "9983.11.00", Category: "tax consultancy"},
	{Keyword: "consultation", Code: "9983.11.00", Category: "tax consultancy"},
	{Keyword: "advisory", Code: "9983.11.00", Category: "tax consultancy"},

	// Registration Services
	{Keyword: "ntn registration", Code: "9983.12.00", Category: "registration"},
	{Keyword: "strn registration", Code: "9983.12.00", Category: "registration"},
	{Keyword: "business registration", Code: "9983.12.00", Category: "registration"},
	{Keyword: "company registration", Code: "9983.12.00", Category: "registration"},
	{Keyword: "registration", Code: "9983.12.00", Category: "registration"},

	// Accounting Services
	{Keyword: "accounting", Code: "9983.13.00", Category: "accounting"},
	{Keyword: "bookkeeping", Code: "9983.13.00", Category: "accounting"},
	{Keyword: "financial statements", Code: "9983.13.00", Category: "accounting"},
	{Keyword: "audit", Code: "9983.13.00", Category: "accounting"},
	{Keyword: "auditing", Code: "9983.13.00", Category: "accounting"},

	// Legal Services
	{Keyword: "legal consultation", Code: "9983.14.00", Category: "legal"},
	{Keyword: "legal advice", Code: "9983.14.00", Category: "legal"},
	{Keyword: "legal services", Code: "9983.14.00", Category: "legal"},
	{Keyword: "legal", Code: "9983.14.00", Category: "legal"},

	// Software and IT Services
	{Keyword: "software", Code: "9983.15.00", Category: "software and it"},
	{Keyword: "software development", Code: "9983.15.00", Category: "software and it"},
	{Keyword: "it services", Code: "9983.15.00", Category: "software and it"},
	{Keyword: "web development", Code: "9983.15.00", Category: "software and it"},
	{Keyword: "app development", Code: "9983.15.00", Category: "software and it"},
	{Keyword: "digital services", Code: "9983.15.00", Category: "software and it"},

	// Training and Education
	{Keyword: "training", Code: "9983.16.00", Category: "training and education"},
	{Keyword: "education", Code: "9983.16.00", Category: "training and education"},
	{Keyword: "workshop", Code: "9983.16.00", Category: "training and education"},
	{Keyword: "seminar", Code: "9983.16.00", Category: "training and education"},
	{Keyword: "course", Code: "9983.16.00", Category: "training and education"},

	// Marketing and Advertising
	{Keyword: "marketing", Code: "9983.17.00", Category: "marketing and advertising"},
	{Keyword: "advertising", Code: "9983.17.00", Category: "marketing and advertising"},
	{Keyword: "promotion", Code: "9983.17.00", Category: "marketing and advertising"},
	{Keyword: "branding", Code: "9983.17.00", Category: "marketing and advertising"},

	// Transportation and Logistics
	{Keyword: "transportation", Code: "9983.18.00", Category: "transportation and logistics"},
	{Keyword: "logistics", Code: "9983.18.00", Category: "transportation and logistics"},
	{Keyword: "shipping", Code: "9983.18.00", Category: "transportation and logistics"},
	{Keyword: "delivery", Code: "9983.18.00", Category: "transportation and logistics"},
	{Keyword: "freight", Code: "9983.18.00", Category: "transportation and logistics"},

	// Construction and Real Estate
	{Keyword: "construction", Code: "9983.19.00", Category: "construction and real estate"},
	{Keyword: "real estate", Code: "9983.19.00", Category: "construction and real estate"},
	{Keyword: "property", Code: "9983.19.00", Category: "construction and real estate"},
	{Keyword: "building", Code: "9983.19.00", Category: "construction and real estate"},

	// Manufacturing and Industrial
	{Keyword: "manufacturing", Code: "9983.20.00", Category: "manufacturing and industrial"},
	{Keyword: "industrial", Code: "9983.20.00", Category: "manufacturing and industrial"},
	{Keyword: "production", Code: "9983.20.00", Category: "manufacturing and industrial"},
	{Keyword: "factory", Code: "9983.20.00", Category: "manufacturing and industrial"},

	// Retail and Wholesale
	{Keyword: "retail", Code: "9983.21.00", Category: "retail and wholesale"},
	{Keyword: "wholesale", Code: "9983.21.00", Category: "retail and wholesale"},
	{Keyword: "trading", Code: "9983.21.00", Category: "retail and wholesale"},
	{Keyword: "commerce", Code: "9983.21.00", Category: "retail and wholesale"},

	// Healthcare and Medical
	{Keyword: "healthcare", Code: "9983.22.00", Category: "healthcare and medical"},
	{Keyword: "medical", Code: "9983.22.00", Category: "healthcare and medical"},
	{Keyword: "health", Code: "9983.22.00", Category: "healthcare and medical"},
	{Keyword: "pharmaceutical", Code: "9983.22.00", Category: "healthcare and medical"},

	// Food and Beverage
	{Keyword: "food", Code: "9983.23.00", Category: "food and beverage"},
	{Keyword: "beverage", Code: "9983.23.00", Category: "food and beverage"},
	{Keyword: "restaurant", Code: "9983.23.00", Category: "food and beverage"},
	{Keyword: "catering", Code: "9983.23.00", Category: "food and beverage"},

	// Textile and Clothing
	{Keyword: "textile", Code: "9983.24.00", Category: "textile and clothing"},
	{Keyword: "clothing", Code: "9983.24.00", Category: "textile and clothing"},
	{Keyword: "garment", Code: "9983.24.00", Category: "textile and clothing"},
	{Keyword: "fabric", Code: "9983.24.00", Category: "textile and clothing"},

	// Electronics and Technology
	{Keyword: "electronics", Code: "9983.25.00", Category: "electronics and technology"},
	{Keyword: "technology", Code: "9983.25.00", Category: "electronics and technology"},
	{Keyword: "computer", Code: "9983.25.00", Category: "electronics and technology"},
	{Keyword: "mobile", Code: "9983.25.00", Category: "electronics and technology"},
	{Keyword: "phone", Code: "9983.25.00", Category: "electronics and technology"},

	// Automotive and Vehicles
	{Keyword: "automotive", Code: "9983.26.00", Category: "automotive"},
	{Keyword: "vehicle", Code: "9983.26.00", Category: "automotive"},
	{Keyword: "car", Code: "9983.26.00", Category: "automotive"},
	{Keyword: "motorcycle", Code: "9983.26.00", Category: "automotive"},

	// Agriculture and Farming
	{Keyword: "agriculture", Code: "9983.27.00", Category: "agriculture"},
	{Keyword: "farming", Code: "9983.27.00", Category: "agriculture"},
	{Keyword: "crop", Code: "9983.27.00", Category: "agriculture"},
	{Keyword: "livestock", Code: "9983.27.00", Category: "agriculture"},

	// Poultry Products
	{Keyword: "poultry", Code: "2309.00.00", Category: "poultry products"},
	{Keyword: "poultry meal", Code: "2309.00.00", Category: "poultry products"},
	{Keyword: "poultry oil", Code: "1511.00.00", Category: "poultry products"},
	{Keyword: "chicken meal", Code: "2309.00.00", Category: "poultry products"},
	{Keyword: "chicken oil", Code: "1511.00.00", Category: "poultry products"},
	{Keyword: "bird meal", Code: "2309.00.00", Category: "poultry products"},
	{Keyword: "bird oil", Code: "1511.00.00", Category: "poultry products"},
	{Keyword: "feed meal", Code: "2309.00.00", Category: "poultry products"},
	{Keyword: "animal feed", Code: "2309.00.00", Category: "poultry products"},
	{Keyword: "poultry feed", Code: "2309.00.00", Category: "poultry products"},
	{Keyword: "chicken feed", Code: "2309.00.00", Category: "poultry products"},
	{Keyword: "bird feed", Code: "2309.00.00", Category: "poultry products"},
	{Keyword: "meal", Code: "2309.00.00", Category: "poultry products"},
	{Keyword: "oil", Code: "1511.00.00", Category: "poultry products"},

	// Energy and Utilities
	{Keyword: "energy", Code: "9983.28.00", Category: "energy and utilities"},
	{Keyword: "electricity", Code: "9983.28.00", Category: "energy and utilities"},
	{Keyword: "gas", Code: "9983.28.00", Category: "energy and utilities"},
	{Keyword: "utility", Code: "9983.28.00", Category: "energy and utilities"},

	// Banking and Finance
	{Keyword: "banking", Code: "9983.29.00", Category: "banking and finance"},
	{Keyword: "finance", Code: "9983.29.00", Category: "banking and finance"},
	{Keyword: "financial", Code: "9983.29.00", Category: "banking and finance"},
	{Keyword: "investment", Code: "9983.29.00", Category: "banking and finance"},

	// Insurance
	{Keyword: "insurance", Code: "9983.30.00", Category: "insurance"},
	{Keyword: "assurance", Code: "9983.30.00", Category: "insurance"},
	{Keyword: "coverage", Code: "9983.30.00", Category: "insurance"},

	// Telecommunications
	{Keyword: "telecommunication", Code: "9983.31.00", Category: "telecommunications"},
	{Keyword: "telecom", Code: "9983.31.00", Category: "telecommunications"},
	{Keyword: "communication", Code: "9983.31.00", Category: "telecommunications"},
	{Keyword: "internet", Code: "9983.31.00", Category: "telecommunications"},

	// Entertainment and Media
	{Keyword: "entertainment", Code: "9983.32.00", Category: "entertainment and media"},
	{Keyword: "media", Code: "9983.32.00", Category: "entertainment and media"},
	{Keyword: "broadcasting", Code: "9983.32.00", Category: "entertainment and media"},
	{Keyword: "publishing", Code: "9983.32.00", Category: "entertainment and media"},

	// Tourism and Travel
	{Keyword: "tourism", Code: "9983.33.00", Category: "tourism and travel"},
	{Keyword: "travel", Code: "9983.33.00", Category: "tourism and travel"},
	{Keyword: "hotel", Code: "9983.33.00", Category: "tourism and travel"},
	{Keyword: "accommodation", Code: "9983.33.00", Category: "tourism and travel"},

	// Environmental Services
	{Keyword: "environmental", Code: "9983.34.00", Category: "environmental"},
	{Keyword: "waste", Code: "9983.34.00", Category: "environmental"},
	{Keyword: "recycling", Code: "9983.34.00", Category: "environmental"},
	{Keyword: "pollution", Code: "9983.34.00", Category: "environmental"},

	// Security Services
	{Keyword: "security", Code: "9983.35.00", Category: "security"},
	{Keyword: "guarding", Code: "9983.35.00", Category: "security"},
	{Keyword: "protection", Code: "9983.35.00", Category: "security"},
	{Keyword: "surveillance", Code: "9983.35.00", Category: "security"},

	// Cleaning and Maintenance
	{Keyword: "cleaning", Code: "9983.36.00", Category: "cleaning and maintenance"},
	{Keyword: "maintenance", Code: "9983.36.00", Category: "cleaning and maintenance"},
	{Keyword: "repair", Code: "9983.36.00", Category: "cleaning and maintenance"},
	{Keyword: "servicing", Code: "9983.36.00", Category: "cleaning and maintenance"},

	// Research and Development
	{Keyword: "research", Code: "9983.37.00", Category: "research and development"},
	{Keyword: "development", Code: "9983.37.00", Category: "research and development"},
	{Keyword: "r&d", Code: "9983.37.00", Category: "research and development"},
	{Keyword: "innovation", Code: "9983.37.00", Category: "research and development"},

	// Consulting Services
	{Keyword: "consulting", Code: "9983.38.00", Category: "consulting"},
	{Keyword: "consultant", Code: "9983.38.00", Category: "consulting"},
	{Keyword: "expertise", Code: "9983.38.00", Category: "consulting"},
	{Keyword: "specialist", Code: "9983.38.00", Category: "consulting"},

	// Fallback
	{Keyword: "default", Code: "9983.99.00", Category: "default"},
}
