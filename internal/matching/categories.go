// internal/matching/categories.go
// One scorer per preference category. Every scorer is pure and returns
// hasPreference=false with zero score and zero max when the tenant left the
// dimension empty.

package matching

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type scoreFunc func(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult

type categoryScorer struct {
	category Category
	score    scoreFunc
}

// scorers runs in the same order as Categories.
var scorers = [CategoryCount]categoryScorer{
	{CategoryBudget, scoreBudget},
	{CategoryLocation, scoreLocation},
	{CategoryBedrooms, scoreBedrooms},
	{CategoryPropertyType, scorePropertyType},
	{CategoryAvailability, scoreAvailability},
	{CategoryAmenities, scoreAmenities},
	{CategoryBathrooms, scoreBathrooms},
	{CategoryBuildingStyle, scoreBuildingStyle},
	{CategoryLifestyle, scoreLifestyle},
	{CategoryDuration, scoreDuration},
	{CategorySize, scoreSize},
	{CategoryFurnishing, scoreFurnishing},
	{CategorySmoking, scoreSmoking},
	{CategoryPets, scorePets},
	{CategoryBills, scoreBills},
}

// Result builders

func noPreference(c Category) CategoryMatchResult {
	return CategoryMatchResult{
		Category: c,
		Reason:   "No preference set",
	}
}

func fullMatch(c Category, maxScore float64, reason, details string) CategoryMatchResult {
	return CategoryMatchResult{
		Category:      c,
		Match:         true,
		Score:         maxScore,
		MaxScore:      maxScore,
		Reason:        reason,
		Details:       details,
		HasPreference: true,
	}
}

// partialMatch awards round(fraction*maxScore) points.
func partialMatch(c Category, maxScore, fraction float64, reason, details string) CategoryMatchResult {
	return CategoryMatchResult{
		Category:      c,
		Score:         math.Round(maxScore * fraction),
		MaxScore:      maxScore,
		Reason:        reason,
		Details:       details,
		HasPreference: true,
	}
}

func noMatch(c Category, maxScore float64, reason, details string) CategoryMatchResult {
	return CategoryMatchResult{
		Category:      c,
		MaxScore:      maxScore,
		Reason:        reason,
		Details:       details,
		HasPreference: true,
	}
}

// ratioMatch applies the shared ladder used by amenities and location.
func ratioMatch(c Category, maxScore, ratio float64, label, details string) CategoryMatchResult {
	switch {
	case ratio >= 1:
		return fullMatch(c, maxScore, "All preferred "+label+" match", details)
	case ratio >= 0.6:
		return partialMatch(c, maxScore, ratio, "Most preferred "+label+" match", details)
	case ratio > 0:
		return partialMatch(c, maxScore, ratio, "Some preferred "+label+" match", details)
	default:
		return noMatch(c, maxScore, "Preferred "+label+" don't match", details)
	}
}

// Budget

func scoreBudget(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	if prefs.MinPrice == nil && prefs.MaxPrice == nil {
		return noPreference(CategoryBudget)
	}

	price := p.Price
	details := fmt.Sprintf("Rent %s, budget %s", formatMoney(price), formatBudget(prefs.MinPrice, prefs.MaxPrice))

	aboveMin := prefs.MinPrice == nil || price >= *prefs.MinPrice
	belowMax := prefs.MaxPrice == nil || price <= *prefs.MaxPrice

	switch {
	case aboveMin && belowMax:
		return fullMatch(CategoryBudget, maxScore, "Within your budget", details)
	case prefs.MaxPrice != nil && price > *prefs.MaxPrice && price <= *prefs.MaxPrice*1.1:
		return partialMatch(CategoryBudget, maxScore, 0.5, "Slightly over budget", details)
	case prefs.MinPrice != nil && price < *prefs.MinPrice && price >= *prefs.MinPrice*0.8:
		return partialMatch(CategoryBudget, maxScore, 0.7, "Below your minimum budget", details)
	default:
		return noMatch(CategoryBudget, maxScore, "Outside your budget", details)
	}
}

// Location

func scoreLocation(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	areas := normalizeList(prefs.PreferredAreas)
	districts := normalizeList(prefs.PreferredDistricts)
	stations := normalizeList(prefs.PreferredMetroStations)
	if len(areas) == 0 && len(districts) == 0 && len(stations) == 0 {
		return noPreference(CategoryLocation)
	}

	address := normalize(p.Address)
	labels := make([]string, 0, len(p.MetroStations))
	for _, st := range p.MetroStations {
		if l := normalize(st.Label); l != "" {
			labels = append(labels, l)
		}
	}

	var criteria int
	var matched float64
	var notes []string

	if len(areas) > 0 {
		criteria++
		if area, ok := findArea(areas, address, labels); ok {
			matched++
			notes = append(notes, "area "+area)
		}
	}

	if len(districts) > 0 {
		criteria++
		for _, d := range districts {
			if strings.Contains(address, d) {
				matched++
				notes = append(notes, "district "+d)
				break
			}
		}
	}

	if len(stations) > 0 {
		criteria++
		best := 0.0
		bestLabel := ""
		for _, want := range stations {
			for _, l := range labels {
				if l == want {
					best, bestLabel = 1, l
					break
				}
				if best < 0.7 && (strings.Contains(l, want) || strings.Contains(want, l)) {
					best, bestLabel = 0.7, l
				}
			}
			if best == 1 {
				break
			}
		}
		if best > 0 {
			matched += best
			notes = append(notes, "metro "+bestLabel)
		}
	}

	details := fmt.Sprintf("%s of %d location criteria met", strconv.FormatFloat(matched, 'f', -1, 64), criteria)
	if len(notes) > 0 {
		details += " (" + strings.Join(notes, ", ") + ")"
	}

	return ratioMatch(CategoryLocation, maxScore, matched/float64(criteria), "locations", details)
}

func findArea(areas []string, address string, labels []string) (string, bool) {
	for _, a := range areas {
		if strings.Contains(address, a) {
			return a, true
		}
		for _, l := range labels {
			if strings.Contains(l, a) {
				return a, true
			}
		}
	}
	return "", false
}

// Bedrooms

func scoreBedrooms(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	if len(prefs.Bedrooms) == 0 {
		return noPreference(CategoryBedrooms)
	}
	wanted := formatIntList(prefs.Bedrooms)
	if p.Bedrooms == nil {
		return partialMatch(CategoryBedrooms, maxScore, 0.3, "Bedroom count not listed", "Wanted "+wanted)
	}

	count := int64(*p.Bedrooms)
	details := fmt.Sprintf("%d bedrooms, wanted %s", count, wanted)
	if containsInt(prefs.Bedrooms, count) {
		return fullMatch(CategoryBedrooms, maxScore, "Bedroom count matches", details)
	}

	lo, hi := minMaxInt(prefs.Bedrooms)
	if count == lo-1 || count == hi+1 {
		return partialMatch(CategoryBedrooms, maxScore, 0.5, "One bedroom off your preference", details)
	}
	return noMatch(CategoryBedrooms, maxScore, "Bedroom count doesn't match", details)
}

// Bathrooms

func scoreBathrooms(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	if len(prefs.Bathrooms) == 0 {
		return noPreference(CategoryBathrooms)
	}
	wanted := formatIntList(prefs.Bathrooms)
	if p.Bathrooms == nil {
		return partialMatch(CategoryBathrooms, maxScore, 0.3, "Bathroom count not listed", "Wanted "+wanted)
	}

	count := int64(*p.Bathrooms)
	details := fmt.Sprintf("%d bathrooms, wanted %s", count, wanted)
	if containsInt(prefs.Bathrooms, count) {
		return fullMatch(CategoryBathrooms, maxScore, "Bathroom count matches", details)
	}

	_, hi := minMaxInt(prefs.Bathrooms)
	if count > hi {
		r := partialMatch(CategoryBathrooms, maxScore, 0.9, "More bathrooms than required", details)
		r.Match = true
		return r
	}
	return noMatch(CategoryBathrooms, maxScore, "Fewer bathrooms than required", details)
}

// Property type and building style

func scorePropertyType(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	return scoreMembership(CategoryPropertyType, prefs.PropertyTypes, p.PropertyType, "property type", maxScore)
}

func scoreBuildingStyle(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	return scoreMembership(CategoryBuildingStyle, prefs.BuildingTypes, p.BuildingType, "building style", maxScore)
}

func scoreMembership(c Category, wanted []string, value *string, label string, maxScore float64) CategoryMatchResult {
	list := normalizeList(wanted)
	if len(list) == 0 {
		return noPreference(c)
	}
	details := "Wanted " + strings.Join(list, ", ")
	if value == nil || normalize(*value) == "" {
		return noMatch(c, maxScore, "No "+label+" listed", details)
	}

	v := normalize(*value)
	details = fmt.Sprintf("%s is %s, wanted %s", label, v, strings.Join(list, ", "))
	if containsString(list, v) {
		return fullMatch(c, maxScore, "Preferred "+label, details)
	}
	return noMatch(c, maxScore, "Different "+label, details)
}

// Availability

func scoreAvailability(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	if prefs.MoveInDate == nil {
		return noPreference(CategoryAvailability)
	}
	moveIn := prefs.MoveInDate.Format("2006-01-02")
	if p.AvailableFrom == nil {
		return partialMatch(CategoryAvailability, maxScore, 0.5, "Availability date not specified", "Move-in "+moveIn)
	}

	late := daysBetween(*prefs.MoveInDate, *p.AvailableFrom)
	details := fmt.Sprintf("Available %s, move-in %s", p.AvailableFrom.Format("2006-01-02"), moveIn)

	switch {
	case late <= 0:
		return fullMatch(CategoryAvailability, maxScore, "Available by your move-in date", details)
	case late <= 14:
		return partialMatch(CategoryAvailability, maxScore, 0.7, fmt.Sprintf("Available %d days after move-in", late), details)
	case late <= 30:
		return partialMatch(CategoryAvailability, maxScore, 0.4, fmt.Sprintf("Available %d days after move-in", late), details)
	default:
		return noMatch(CategoryAvailability, maxScore, "Available too late", details)
	}
}

// daysBetween returns the whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// Amenities

func scoreAmenities(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	wanted := normalizeList(prefs.Amenities)

	outdoor := []struct {
		name   string
		wanted *bool
		has    bool
	}{
		{"outdoor space", prefs.OutdoorSpace, p.OutdoorSpace},
		{"balcony", prefs.Balcony, p.Balcony},
		{"terrace", prefs.Terrace, p.Terrace},
	}

	requested := len(wanted)
	for _, o := range outdoor {
		if o.wanted != nil && *o.wanted {
			requested++
		}
	}
	if requested == 0 {
		return noPreference(CategoryAmenities)
	}

	have := make(map[string]bool, len(p.Amenities))
	for _, a := range p.Amenities {
		have[normalize(a)] = true
	}

	matched := 0
	var missing []string
	for _, a := range wanted {
		if have[a] {
			matched++
		} else {
			missing = append(missing, a)
		}
	}
	for _, o := range outdoor {
		if o.wanted == nil || !*o.wanted {
			continue
		}
		if o.has {
			matched++
		} else {
			missing = append(missing, o.name)
		}
	}

	details := fmt.Sprintf("%d of %d requested amenities available", matched, requested)
	if len(missing) > 0 {
		details += ", missing " + strings.Join(missing, ", ")
	}

	return ratioMatch(CategoryAmenities, maxScore, float64(matched)/float64(requested), "amenities", details)
}

// Lifestyle

var occupationTenantTypes = map[string][]string{
	"student":       {"student"},
	"professional":  {"professional"},
	"employed":      {"professional"},
	"self_employed": {"professional"},
	"self-employed": {"professional"},
	"freelancer":    {"professional"},
	"retired":       {"elder"},
}

var familyStatusTenantTypes = map[string][]string{
	"single":        {"single", "student", "professional"},
	"couple":        {"couple"},
	"married":       {"couple", "family"},
	"family":        {"family"},
	"with_children": {"family"},
}

func scoreLifestyle(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	occupation := normalizePtr(prefs.Occupation)
	familyStatus := normalizePtr(prefs.FamilyStatus)
	children := normalizePtr(prefs.ChildrenCount)
	if occupation == "" && familyStatus == "" && children == "" {
		return noPreference(CategoryLifestyle)
	}

	accepted := normalizeList(p.TenantTypes)
	if len(accepted) == 0 {
		return fullMatch(CategoryLifestyle, maxScore, "Landlord accepts all tenant types", "")
	}
	acceptedSet := make(map[string]bool, len(accepted))
	for _, t := range accepted {
		acceptedSet[t] = true
	}
	anyAccepted := func(types []string) bool {
		for _, t := range types {
			if acceptedSet[t] {
				return true
			}
		}
		return false
	}

	checks, passed := 0, 0
	if occupation != "" {
		checks++
		if anyAccepted(occupationTenantTypes[occupation]) {
			passed++
		}
	}
	if familyStatus != "" {
		checks++
		if anyAccepted(familyStatusTenantTypes[familyStatus]) {
			passed++
		}
	}
	if children != "" && children != "no" && children != "0" {
		checks++
		if anyAccepted([]string{"family", "elder"}) {
			passed++
		}
	}

	details := "Landlord accepts " + strings.Join(accepted, ", ")
	if checks == 0 {
		return fullMatch(CategoryLifestyle, maxScore, "No tenant restrictions apply to you", details)
	}

	ratio := float64(passed) / float64(checks)
	switch {
	case ratio >= 1:
		return fullMatch(CategoryLifestyle, maxScore, "Fits the landlord's tenant requirements", details)
	case ratio >= 0.5:
		return partialMatch(CategoryLifestyle, maxScore, ratio, "Good lifestyle fit", details)
	case ratio > 0:
		return partialMatch(CategoryLifestyle, maxScore, ratio, "Partial lifestyle fit", details)
	default:
		return noMatch(CategoryLifestyle, maxScore, "Doesn't fit the landlord's tenant requirements", details)
	}
}

// Duration

// durationGroups maps known let-duration spellings to a short/long-term group.
var durationGroups = map[string]string{
	"short_term":          "short",
	"short-term":          "short",
	"short term":          "short",
	"short":               "short",
	"1_month":             "short",
	"1-3_months":          "short",
	"3_months":            "short",
	"3-6_months":          "short",
	"6_months":            "short",
	"up_to_6_months":      "short",
	"less_than_6_months":  "short",
	"long_term":           "long",
	"long-term":           "long",
	"long term":           "long",
	"long":                "long",
	"6-12_months":         "long",
	"12_months":           "long",
	"12+_months":          "long",
	"1_year":              "long",
	"more_than_12_months": "long",
	"annual":              "long",
}

func scoreDuration(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	wanted := splitList(prefs.LetDuration)
	if len(wanted) == 0 {
		return noPreference(CategoryDuration)
	}

	offered := splitList(p.LetDuration)
	if len(offered) == 0 || containsString(offered, "flexible") {
		return fullMatch(CategoryDuration, maxScore, "Flexible let duration", "Wanted "+strings.Join(wanted, ", "))
	}

	details := fmt.Sprintf("Offered %s, wanted %s", strings.Join(offered, ", "), strings.Join(wanted, ", "))
	for _, w := range wanted {
		if containsString(offered, w) {
			return fullMatch(CategoryDuration, maxScore, "Let duration matches", details)
		}
	}

	for _, w := range wanted {
		group, ok := durationGroups[w]
		if !ok {
			continue
		}
		for _, o := range offered {
			if durationGroups[o] == group {
				return partialMatch(CategoryDuration, maxScore, 0.8, "Similar let duration", details)
			}
		}
	}
	return noMatch(CategoryDuration, maxScore, "Let duration doesn't match", details)
}

// Size

func scoreSize(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	if prefs.MinSquareMeters == nil && prefs.MaxSquareMeters == nil {
		return noPreference(CategorySize)
	}
	wanted := formatRange(prefs.MinSquareMeters, prefs.MaxSquareMeters, "m²")
	if p.SquareMeters == nil {
		return partialMatch(CategorySize, maxScore, 0.3, "Size not listed", "Wanted "+wanted)
	}

	size := *p.SquareMeters
	details := fmt.Sprintf("%sm², wanted %s", strconv.FormatFloat(size, 'f', -1, 64), wanted)

	aboveMin := prefs.MinSquareMeters == nil || size >= *prefs.MinSquareMeters
	belowMax := prefs.MaxSquareMeters == nil || size <= *prefs.MaxSquareMeters

	switch {
	case aboveMin && belowMax:
		return fullMatch(CategorySize, maxScore, "Size within your range", details)
	case prefs.MinSquareMeters != nil && size < *prefs.MinSquareMeters && size >= *prefs.MinSquareMeters*0.85:
		return partialMatch(CategorySize, maxScore, 0.6, "Slightly smaller than preferred", details)
	default:
		return noMatch(CategorySize, maxScore, "Size outside your range", details)
	}
}

// Furnishing

func scoreFurnishing(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	wanted := normalizeList(prefs.Furnishing)
	if len(wanted) == 0 {
		return noPreference(CategoryFurnishing)
	}
	if p.Furnishing == nil || normalize(*p.Furnishing) == "" {
		return noMatch(CategoryFurnishing, maxScore, "Furnishing not specified", "Wanted "+strings.Join(wanted, ", "))
	}

	f := normalize(*p.Furnishing)
	details := fmt.Sprintf("%s, wanted %s", f, strings.Join(wanted, ", "))
	switch {
	case containsString(wanted, f):
		return fullMatch(CategoryFurnishing, maxScore, "Furnishing matches", details)
	case f == "partially_furnished" || f == "part-furnished":
		return partialMatch(CategoryFurnishing, maxScore, 0.5, "Partially furnished", details)
	default:
		return noMatch(CategoryFurnishing, maxScore, "Furnishing doesn't match", details)
	}
}

// Smoking

func scoreSmoking(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	smoker := normalizePtr(prefs.Smoker)
	if smoker == "" || smoker == "no-preference" {
		return noPreference(CategorySmoking)
	}

	details := "No smoking area"
	if p.SmokingArea {
		details = "Has a smoking area"
	}

	switch smoker {
	case "yes":
		if p.SmokingArea {
			return fullMatch(CategorySmoking, maxScore, "Smoking area available", details)
		}
		return noMatch(CategorySmoking, maxScore, "No smoking area", details)
	case "no-but-okay":
		return fullMatch(CategorySmoking, maxScore, "Fine with either", details)
	case "no", "no-prefer-non-smoking":
		if !p.SmokingArea {
			return fullMatch(CategorySmoking, maxScore, "Non-smoking property", details)
		}
		return partialMatch(CategorySmoking, maxScore, 0.3, "Property allows smoking", details)
	default:
		return noMatch(CategorySmoking, maxScore, "Unrecognised smoking preference", "Value "+smoker)
	}
}

// Pets

func scorePets(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	wantsPets := (prefs.PetPolicy != nil && *prefs.PetPolicy) || len(prefs.Pets) > 0
	if !wantsPets {
		return noPreference(CategoryPets)
	}
	if !p.PetPolicy {
		return noMatch(CategoryPets, maxScore, "Pets not allowed", "")
	}

	var tenantTypes []string
	for _, pet := range prefs.Pets {
		t := normalize(pet.Type)
		if t != "" && !containsString(tenantTypes, t) {
			tenantTypes = append(tenantTypes, t)
		}
	}
	if len(tenantTypes) == 0 {
		return fullMatch(CategoryPets, maxScore, "Pets allowed", "")
	}

	allowed := make(map[string]bool, len(p.Pets))
	for _, pet := range p.Pets {
		if t := normalize(pet.Type); t != "" {
			allowed[t] = true
		}
	}
	// pet_policy with no listed types means no restriction
	if len(allowed) == 0 {
		return fullMatch(CategoryPets, maxScore, "All pets allowed", "")
	}

	matched := 0
	for _, t := range tenantTypes {
		if allowed["all"] || allowed[t] {
			matched++
		}
	}

	details := fmt.Sprintf("%d of %d pet types accepted", matched, len(tenantTypes))
	ratio := float64(matched) / float64(len(tenantTypes))
	switch {
	case ratio >= 1:
		return fullMatch(CategoryPets, maxScore, "Your pets are welcome", details)
	case ratio > 0:
		return partialMatch(CategoryPets, maxScore, ratio, "Some of your pets are accepted", details)
	default:
		return noMatch(CategoryPets, maxScore, "Your pets are not accepted", details)
	}
}

// Bills

func scoreBills(p *Property, prefs *Preferences, maxScore float64) CategoryMatchResult {
	wanted := normalizePtr(prefs.Bills)
	if wanted == "" {
		return noPreference(CategoryBills)
	}
	offered := normalizePtr(p.Bills)
	if offered == "" {
		return noMatch(CategoryBills, maxScore, "Bills arrangement not specified", "Wanted "+wanted)
	}

	details := fmt.Sprintf("Bills %s, wanted %s", offered, wanted)
	switch {
	case offered == wanted:
		return fullMatch(CategoryBills, maxScore, "Bills arrangement matches", details)
	case wanted == "included" && offered == "some_included":
		return partialMatch(CategoryBills, maxScore, 0.6, "Some bills included", details)
	default:
		return noMatch(CategoryBills, maxScore, "Bills arrangement doesn't match", details)
	}
}

// Helpers

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizePtr(s *string) string {
	if s == nil {
		return ""
	}
	return normalize(*s)
}

func normalizeList(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if n := normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// splitList reads a comma-joined multiselect value.
func splitList(s *string) []string {
	if s == nil {
		return nil
	}
	return normalizeList(strings.Split(*s, ","))
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(list []int64, v int64) bool {
	for _, n := range list {
		if n == v {
			return true
		}
	}
	return false
}

func minMaxInt(list []int64) (int64, int64) {
	lo, hi := list[0], list[0]
	for _, n := range list[1:] {
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	return lo, hi
}

func formatIntList(list []int64) string {
	parts := make([]string, len(list))
	for i, n := range list {
		parts[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(parts, ", ")
}

func formatMoney(v float64) string {
	return "£" + strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBudget(min, max *float64) string {
	switch {
	case min != nil && max != nil:
		return formatMoney(*min) + " - " + formatMoney(*max)
	case max != nil:
		return "up to " + formatMoney(*max)
	case min != nil:
		return "from " + formatMoney(*min)
	default:
		return ""
	}
}

func formatRange(min, max *float64, unit string) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + unit }
	switch {
	case min != nil && max != nil:
		return f(*min) + " - " + f(*max)
	case max != nil:
		return "up to " + f(*max)
	case min != nil:
		return "from " + f(*min)
	default:
		return ""
	}
}
