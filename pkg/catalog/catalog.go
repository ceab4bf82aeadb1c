package catalog

// Entry is one selectable value for an enumerable configuration slot.
// Labels and descriptions are keyed by locale ("en", "ar").
type Entry struct {
	Key         string            `json:"key"`
	Label       map[string]string `json:"label"`
	Description map[string]string `json:"description,omitempty"`
}

// LabelFor returns the localized label, falling back to English, then the key.
func (e Entry) LabelFor(locale string) string {
	if l, ok := e.Label[locale]; ok && l != "" {
		return l
	}
	if l, ok := e.Label["en"]; ok && l != "" {
		return l
	}
	return e.Key
}

// DescriptionFor returns the localized description, falling back to English.
func (e Entry) DescriptionFor(locale string) string {
	if d, ok := e.Description[locale]; ok {
		return d
	}
	return e.Description["en"]
}

// Maturity levels, ordered from least to most developed.
const (
	MaturityConcept   = "concept"
	MaturityPrototype = "prototype"
	MaturityMVP       = "mvp"
	MaturityLaunched  = "launched"
)

var categories = []Entry{
	{Key: "finance", Label: map[string]string{"en": "Finance", "ar": "المالية"}, Description: map[string]string{"en": "Banking, payments, investing and insurance", "ar": "الخدمات المصرفية والمدفوعات والاستثمار والتأمين"}},
	{Key: "health", Label: map[string]string{"en": "Health", "ar": "الصحة"}, Description: map[string]string{"en": "Healthcare, wellness and medical services", "ar": "الرعاية الصحية والعافية والخدمات الطبية"}},
	{Key: "education", Label: map[string]string{"en": "Education", "ar": "التعليم"}, Description: map[string]string{"en": "Learning platforms, tutoring and training", "ar": "منصات التعلم والدروس الخصوصية والتدريب"}},
	{Key: "ecommerce", Label: map[string]string{"en": "E-commerce", "ar": "التجارة الإلكترونية"}, Description: map[string]string{"en": "Online retail and marketplaces", "ar": "البيع بالتجزئة والأسواق عبر الإنترنت"}},
	{Key: "food", Label: map[string]string{"en": "Food & Beverage", "ar": "الأغذية والمشروبات"}, Description: map[string]string{"en": "Restaurants, delivery and food products", "ar": "المطاعم والتوصيل والمنتجات الغذائية"}},
	{Key: "transport", Label: map[string]string{"en": "Transport & Logistics", "ar": "النقل والخدمات اللوجستية"}, Description: map[string]string{"en": "Mobility, shipping and delivery networks", "ar": "التنقل والشحن وشبكات التوصيل"}},
	{Key: "entertainment", Label: map[string]string{"en": "Entertainment", "ar": "الترفيه"}, Description: map[string]string{"en": "Media, gaming and streaming", "ar": "الإعلام والألعاب والبث"}},
	{Key: "realestate", Label: map[string]string{"en": "Real Estate", "ar": "العقارات"}, Description: map[string]string{"en": "Property listing, renting and management", "ar": "عرض العقارات والتأجير والإدارة"}},
	{Key: "travel", Label: map[string]string{"en": "Travel & Tourism", "ar": "السفر والسياحة"}, Description: map[string]string{"en": "Booking, hospitality and tourism services", "ar": "الحجز والضيافة وخدمات السياحة"}},
	{Key: "technology", Label: map[string]string{"en": "Technology", "ar": "التقنية"}, Description: map[string]string{"en": "Software, SaaS and developer tools", "ar": "البرمجيات والخدمات السحابية وأدوات المطورين"}},
}

var audiences = []Entry{
	{Key: "students", Label: map[string]string{"en": "Students", "ar": "الطلاب"}},
	{Key: "professionals", Label: map[string]string{"en": "Professionals", "ar": "المهنيون"}},
	{Key: "parents", Label: map[string]string{"en": "Parents", "ar": "الآباء والأمهات"}},
	{Key: "entrepreneurs", Label: map[string]string{"en": "Entrepreneurs", "ar": "رواد الأعمال"}},
	{Key: "teenagers", Label: map[string]string{"en": "Teenagers", "ar": "المراهقون"}},
	{Key: "seniors", Label: map[string]string{"en": "Seniors", "ar": "كبار السن"}},
	{Key: "families", Label: map[string]string{"en": "Families", "ar": "العائلات"}},
	{Key: "tourists", Label: map[string]string{"en": "Tourists", "ar": "السياح"}},
}

var goals = []Entry{
	{Key: "validate_demand", Label: map[string]string{"en": "Validate demand", "ar": "التحقق من الطلب"}, Description: map[string]string{"en": "See whether agents would actually use the product", "ar": "معرفة ما إذا كان الوكلاء سيستخدمون المنتج فعلاً"}},
	{Key: "estimate_pricing", Label: map[string]string{"en": "Estimate pricing", "ar": "تقدير التسعير"}, Description: map[string]string{"en": "Find the price range agents accept", "ar": "إيجاد نطاق السعر الذي يقبله الوكلاء"}},
	{Key: "test_messaging", Label: map[string]string{"en": "Test messaging", "ar": "اختبار الرسائل التسويقية"}, Description: map[string]string{"en": "Check which pitch resonates with the audience", "ar": "معرفة أي عرض يلقى صدى لدى الجمهور"}},
	{Key: "identify_segments", Label: map[string]string{"en": "Identify segments", "ar": "تحديد الشرائح"}, Description: map[string]string{"en": "Discover which audience groups respond best", "ar": "اكتشاف الفئات الأكثر تجاوباً"}},
	{Key: "assess_risks", Label: map[string]string{"en": "Assess risks", "ar": "تقييم المخاطر"}, Description: map[string]string{"en": "Surface objections and failure modes early", "ar": "كشف الاعتراضات وأسباب الفشل مبكراً"}},
	{Key: "forecast_adoption", Label: map[string]string{"en": "Forecast adoption", "ar": "توقع معدل التبني"}, Description: map[string]string{"en": "Project how fast usage could grow", "ar": "توقع سرعة نمو الاستخدام"}},
}

var maturities = []Entry{
	{Key: MaturityConcept, Label: map[string]string{"en": "Concept", "ar": "فكرة"}, Description: map[string]string{"en": "Just an idea, nothing built yet", "ar": "مجرد فكرة، لم يُبنَ شيء بعد"}},
	{Key: MaturityPrototype, Label: map[string]string{"en": "Prototype", "ar": "نموذج أولي"}, Description: map[string]string{"en": "A rough working demo exists", "ar": "يوجد نموذج تجريبي مبدئي"}},
	{Key: MaturityMVP, Label: map[string]string{"en": "MVP", "ar": "منتج أولي قابل للاستخدام"}, Description: map[string]string{"en": "A minimal version is usable by early users", "ar": "نسخة مبسطة يستخدمها المستخدمون الأوائل"}},
	{Key: MaturityLaunched, Label: map[string]string{"en": "Launched", "ar": "مُطلق"}, Description: map[string]string{"en": "The product is live on the market", "ar": "المنتج متاح في السوق"}},
}

// Categories returns the fixed business category catalog.
func Categories() []Entry { return categories }

// Audiences returns the fixed target-audience catalog.
func Audiences() []Entry { return audiences }

// Goals returns the fixed simulation-goal catalog.
func Goals() []Entry { return goals }

// Maturities returns the idea maturity levels.
func Maturities() []Entry { return maturities }

// Find returns the entry with the given canonical key, if present.
func Find(entries []Entry, key string) (Entry, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}
