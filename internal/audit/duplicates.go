package audit

import (
	"fmt"
	"sort"
	"strings"
)

// Severity grades a multi-producer finding by how many inspectors produce
// the same fact.
type Severity string

// Severity levels.
const (
	SeverityMedium   Severity = "MEDIUM"   // 2 producers
	SeverityHigh     Severity = "HIGH"     // 3 producers
	SeverityCritical Severity = "CRITICAL" // 4 or more producers
)

// DuplicateGroup clusters fact names suspected to denote the same property.
// Groups sharing at least one fact are merged, so the final set is a
// connected-components partition. Group ordering is advisory; fact names
// inside a group are sorted for reproducibility.
type DuplicateGroup struct {
	Facts    []string `json:"facts"`
	Reasons  []string `json:"reasons"`
	Severity Severity `json:"severity,omitempty"`
}

// synonymSuffixes is the fixed vocabulary stripped during normalization,
// longest entries first so compound suffixes win.
var synonymSuffixes = []string{
	"configuration", "implementation", "management",
	"detected", "template", "pattern", "service",
	"config", "found", "usage", "used", "impl", "mgmt", "svc",
}

// synonymPairs is the fixed table for the swap strategy.
var synonymPairs = [][2]string{
	{"detected", "found"},
	{"usage", "used"},
	{"pattern", "template"},
	{"config", "configuration"},
	{"impl", "implementation"},
	{"mgmt", "management"},
	{"svc", "service"},
}

// domainContexts holds the fixed keyword set per domain context used by the
// context-clustering strategy.
var domainContexts = map[string][]string{
	"persistence": {"hibernate", "database", "jdbc", "jpa", "sql", "db"},
	"messaging":   {"kafka", "queue", "topic", "jms", "mq"},
	"web":         {"servlet", "http", "rest", "jsp", "web"},
	"ejb":         {"session", "bean", "ejb", "mdb"},
}

// compact lowercases a fact name and drops separators and digits.
func compact(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ' ':
		case r >= '0' && r <= '9':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalize reduces a fact name to its comparison form: compacted, with the
// synonym-suffix vocabulary and trailing plurals stripped until stable.
// Stripping never reduces a name to the empty string.
func normalize(name string) string {
	s := compact(name)
	for {
		trimmed := s
		for _, suf := range synonymSuffixes {
			if len(trimmed) > len(suf) && strings.HasSuffix(trimmed, suf) {
				trimmed = trimmed[:len(trimmed)-len(suf)]
				break
			}
		}
		if len(trimmed) > 1 && strings.HasSuffix(trimmed, "s") && !strings.HasSuffix(trimmed, "ss") {
			trimmed = trimmed[:len(trimmed)-1]
		}
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

// Similar reports whether two fact names likely denote the same property:
// either their normalized forms collide, or swapping a table synonym makes
// them collide.
func Similar(a, b string) bool {
	na, nb := normalize(a), normalize(b)
	if na != "" && na == nb {
		return true
	}
	return swappedEqual(a, b) || swappedEqual(b, a)
}

// swappedEqual checks the synonym-pair strategy in one direction.
func swappedEqual(a, b string) bool {
	ca, cb := compact(a), compact(b)
	for _, p := range synonymPairs {
		if strings.Contains(ca, p[0]) && normalize(strings.ReplaceAll(ca, p[0], p[1])) == normalize(cb) {
			return true
		}
		if strings.Contains(ca, p[1]) && normalize(strings.ReplaceAll(ca, p[1], p[0])) == normalize(cb) {
			return true
		}
	}
	return false
}

// editDistance is the Levenshtein distance between two strings.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// findDuplicates mines the fact namespace with all five strategies and
// merges the candidate groups by overlap. facts must be sorted; producers
// maps fact → producing inspectors, producedBy maps inspector → produced
// facts.
func findDuplicates(facts []string, producers map[string][]string, producedBy map[string][]string) []DuplicateGroup {
	var candidates []DuplicateGroup

	candidates = append(candidates, byNormalizedCollision(facts)...)
	candidates = append(candidates, bySameProducerDistance(producedBy)...)
	candidates = append(candidates, bySynonymSwap(facts)...)
	candidates = append(candidates, byDomainContext(facts)...)
	candidates = append(candidates, byMultiProducer(facts, producers)...)

	return mergeByOverlap(candidates)
}

// byNormalizedCollision groups facts whose normalized forms collide.
func byNormalizedCollision(facts []string) []DuplicateGroup {
	byForm := make(map[string][]string)
	for _, f := range facts {
		byForm[normalize(f)] = append(byForm[normalize(f)], f)
	}

	forms := make([]string, 0, len(byForm))
	for form := range byForm {
		forms = append(forms, form)
	}
	sort.Strings(forms)

	var groups []DuplicateGroup
	for _, form := range forms {
		if form == "" || len(byForm[form]) < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{
			Facts:   byForm[form],
			Reasons: []string{fmt.Sprintf("normalized name collision (%q)", form)},
		})
	}
	return groups
}

// bySameProducerDistance compares each inspector's produced facts pairwise
// using a bounded edit distance over normalized forms.
func bySameProducerDistance(producedBy map[string][]string) []DuplicateGroup {
	names := make([]string, 0, len(producedBy))
	for name := range producedBy {
		names = append(names, name)
	}
	sort.Strings(names)

	var groups []DuplicateGroup
	for _, name := range names {
		produced := producedBy[name]
		for i := 0; i < len(produced); i++ {
			for j := i + 1; j < len(produced); j++ {
				na, nb := normalize(produced[i]), normalize(produced[j])
				if na == "" || nb == "" {
					continue
				}
				bound := len(na)
				if len(nb) < bound {
					bound = len(nb)
				}
				bound /= 3
				if bound < 1 {
					bound = 1
				}
				if editDistance(na, nb) <= bound {
					groups = append(groups, DuplicateGroup{
						Facts:   []string{produced[i], produced[j]},
						Reasons: []string{fmt.Sprintf("near-identical outputs of inspector %s", name)},
					})
				}
			}
		}
	}
	return groups
}

// bySynonymSwap pairs facts made equal by one synonym-table substitution.
func bySynonymSwap(facts []string) []DuplicateGroup {
	var groups []DuplicateGroup
	for i := 0; i < len(facts); i++ {
		for j := i + 1; j < len(facts); j++ {
			if normalize(facts[i]) == normalize(facts[j]) {
				continue // already caught by the collision strategy
			}
			if swappedEqual(facts[i], facts[j]) || swappedEqual(facts[j], facts[i]) {
				groups = append(groups, DuplicateGroup{
					Facts:   []string{facts[i], facts[j]},
					Reasons: []string{"synonym pair"},
				})
			}
		}
	}
	return groups
}

// byDomainContext clusters facts of one domain context that become equal
// once every context keyword is stripped.
func byDomainContext(facts []string) []DuplicateGroup {
	contexts := make([]string, 0, len(domainContexts))
	for ctx := range domainContexts {
		contexts = append(contexts, ctx)
	}
	sort.Strings(contexts)

	var groups []DuplicateGroup
	for _, ctx := range contexts {
		keywords := domainContexts[ctx]
		byStripped := make(map[string][]string)
		for _, f := range facts {
			c := compact(f)
			member := false
			for _, kw := range keywords {
				if strings.Contains(c, kw) {
					member = true
					c = strings.ReplaceAll(c, kw, "")
				}
			}
			if member && c != "" {
				byStripped[c] = append(byStripped[c], f)
			}
		}

		stripped := make([]string, 0, len(byStripped))
		for s := range byStripped {
			stripped = append(stripped, s)
		}
		sort.Strings(stripped)

		for _, s := range stripped {
			if len(byStripped[s]) < 2 {
				continue
			}
			groups = append(groups, DuplicateGroup{
				Facts:   byStripped[s],
				Reasons: []string{fmt.Sprintf("same name within %s context", ctx)},
			})
		}
	}
	return groups
}

// byMultiProducer reports every fact with two or more producers four ways:
// individually graded by producer count, grouped by equal producer count,
// grouped by name similarity, and grouped by identical producer set.
func byMultiProducer(facts []string, producers map[string][]string) []DuplicateGroup {
	var multi []string
	for _, fact := range facts {
		if len(producers[fact]) >= 2 {
			multi = append(multi, fact)
		}
	}

	var groups []DuplicateGroup
	byCount := make(map[int][]string)
	bySet := make(map[string][]string)

	for _, fact := range multi {
		prods := producers[fact]
		groups = append(groups, DuplicateGroup{
			Facts:    []string{fact},
			Reasons:  []string{fmt.Sprintf("produced by %d inspectors", len(prods))},
			Severity: severityFor(len(prods)),
		})

		byCount[len(prods)] = append(byCount[len(prods)], fact)

		sorted := append([]string(nil), prods...)
		sort.Strings(sorted)
		bySet[strings.Join(sorted, ",")] = append(bySet[strings.Join(sorted, ",")], fact)
	}

	counts := make([]int, 0, len(byCount))
	for n := range byCount {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	for _, n := range counts {
		if len(byCount[n]) < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{
			Facts:    byCount[n],
			Reasons:  []string{fmt.Sprintf("each produced by %d inspectors", n)},
			Severity: severityFor(n),
		})
	}

	for i := 0; i < len(multi); i++ {
		for j := i + 1; j < len(multi); j++ {
			if Similar(multi[i], multi[j]) {
				groups = append(groups, DuplicateGroup{
					Facts:   []string{multi[i], multi[j]},
					Reasons: []string{"similar names among multi-producer facts"},
				})
			}
		}
	}

	keys := make([]string, 0, len(bySet))
	for k := range bySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if len(bySet[k]) < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{
			Facts:   bySet[k],
			Reasons: []string{fmt.Sprintf("identical producer set (%s)", k)},
		})
	}
	return groups
}

func severityFor(producerCount int) Severity {
	switch {
	case producerCount >= 4:
		return SeverityCritical
	case producerCount == 3:
		return SeverityHigh
	case producerCount == 2:
		return SeverityMedium
	default:
		return ""
	}
}

var severityRank = map[Severity]int{"": 0, SeverityMedium: 1, SeverityHigh: 2, SeverityCritical: 3}

// mergeByOverlap folds candidate groups into connected components: a
// candidate sharing at least one fact with existing groups merges them all,
// otherwise it starts its own group. The result depends on candidate order,
// which is why every strategy emits candidates in sorted order.
func mergeByOverlap(candidates []DuplicateGroup) []DuplicateGroup {
	var merged []DuplicateGroup

	for _, cand := range candidates {
		var overlapping []int
		for i, g := range merged {
			if sharesFact(g.Facts, cand.Facts) {
				overlapping = append(overlapping, i)
			}
		}

		if len(overlapping) == 0 {
			cand.Facts = sortedUnique(cand.Facts)
			merged = append(merged, cand)
			continue
		}

		// Fold the candidate plus every overlapping group into the first one.
		target := overlapping[0]
		merged[target] = mergeGroups(merged[target], cand)
		for k := len(overlapping) - 1; k >= 1; k-- {
			i := overlapping[k]
			merged[target] = mergeGroups(merged[target], merged[i])
			merged = append(merged[:i], merged[i+1:]...)
		}
	}

	return merged
}

func mergeGroups(a, b DuplicateGroup) DuplicateGroup {
	out := DuplicateGroup{
		Facts:    sortedUnique(append(append([]string(nil), a.Facts...), b.Facts...)),
		Severity: a.Severity,
	}
	if severityRank[b.Severity] > severityRank[a.Severity] {
		out.Severity = b.Severity
	}
	seen := make(map[string]bool)
	for _, r := range append(append([]string(nil), a.Reasons...), b.Reasons...) {
		if !seen[r] {
			seen[r] = true
			out.Reasons = append(out.Reasons, r)
		}
	}
	return out
}

func sharesFact(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, f := range a {
		set[f] = true
	}
	for _, f := range b {
		if set[f] {
			return true
		}
	}
	return false
}

func sortedUnique(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
