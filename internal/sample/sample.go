package sample

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/abnmatch/internal/model"
)

// DefaultCancelledRatio is the share of registry records that are not active.
const DefaultCancelledRatio = 0.2

var (
	entityTypes = []string{"Australian Private Company", "Australian Public Company", "Discretionary Trading Trust", "Family Partnership", "Individual/Sole Trader"}
	states      = []string{"NSW", "VIC", "QLD", "WA", "SA", "ACT", "NT", "TAS"}
	streets     = []string{"Main St", "High St", "George St", "Elizabeth St", "King St", "Queen St", "Collins St", "Hay St"}
	suffixes    = []string{"PTY LTD", "PTY. LTD.", "PTY LIMITED", "LIMITED", ""}
	industries  = []string{"Construction", "Retail", "Hospitality", "Mining", "Logistics", "Professional Services", "Agriculture", "Manufacturing"}
	inactive    = []string{"Cancelled", "Deregistered"}
)

// postcodeRanges maps a state to its inclusive postcode range.
var postcodeRanges = map[string][2]int{
	"NSW": {2000, 2599},
	"ACT": {2600, 2699},
	"VIC": {3000, 3999},
	"QLD": {4000, 4999},
	"SA":  {5000, 5999},
	"WA":  {6000, 6999},
	"TAS": {7000, 7999},
	"NT":  {800, 899},
}

// Options controls the size and randomness of a Dataset.
type Options struct {
	// Registry is the number of registry records.
	Registry int
	// Scraped is the number of scraped records.
	Scraped int
	// Seed makes the output reproducible. Zero picks a random seed.
	Seed int64
	// CancelledRatio is the share of inactive registry records.
	CancelledRatio float64
}

// Dataset is a generated register together with matching website records.
type Dataset struct {
	Registry []model.RegistryRecord
	Scraped  []model.ScrapedRecord
}

// Kind describes how a scraped record relates to the register.
type Kind int

const (
	// KindExactABN prints the ABN of a registry record.
	KindExactABN Kind = iota
	// KindNameVariant shows only a variant of a registry name.
	KindNameVariant
	// KindUnregistered matches nothing in the register.
	KindUnregistered
)

// Generator produces datasets from a seeded faker.
type Generator struct {
	faker *gofakeit.Faker
	title cases.Caser
	opts  Options
}

// NewGenerator returns a Generator for opts.
func NewGenerator(opts Options) *Generator {
	if opts.CancelledRatio < 0 || opts.CancelledRatio > 1 {
		opts.CancelledRatio = DefaultCancelledRatio
	}
	return &Generator{
		faker: gofakeit.New(opts.Seed),
		title: cases.Title(language.English),
		opts:  opts,
	}
}

// Generate builds a dataset. Registry ABNs are unique and valid; scraped URLs
// are unique.
func (g *Generator) Generate() Dataset {
	var ds Dataset
	seen := make(map[string]struct{}, g.opts.Registry)
	for len(ds.Registry) < g.opts.Registry {
		r := g.registryRecord()
		if _, dup := seen[r.ABN]; dup {
			continue
		}
		seen[r.ABN] = struct{}{}
		ds.Registry = append(ds.Registry, r)
	}

	for i := 0; i < g.opts.Scraped; i++ {
		kind := g.kind()
		if len(ds.Registry) == 0 {
			kind = KindUnregistered
		}
		var source model.RegistryRecord
		if kind != KindUnregistered {
			source = ds.Registry[g.faker.Number(0, len(ds.Registry)-1)]
		}
		ds.Scraped = append(ds.Scraped, g.scrapedRecord(i, kind, source))
	}
	return ds
}

// Generate is a shortcut for NewGenerator(opts).Generate().
func Generate(opts Options) Dataset {
	return NewGenerator(opts).Generate()
}

func (g *Generator) registryRecord() model.RegistryRecord {
	state := g.faker.RandomString(states)
	postcode := g.postcode(state)
	status := model.StatusActive
	if g.faker.Float64() < g.opts.CancelledRatio {
		status = g.faker.RandomString(inactive)
	}

	name := strings.ToUpper(strings.TrimSpace(g.faker.Company()))
	if suffix := g.faker.RandomString(suffixes); suffix != "" && !strings.HasSuffix(name, suffix) {
		name += " " + suffix
	}

	return model.RegistryRecord{
		ABN:        g.faker.Numerify(fmt.Sprintf("%d##########", g.faker.Number(1, 9))),
		EntityName: name,
		EntityType: g.faker.RandomString(entityTypes),
		Status:     status,
		State:      state,
		Postcode:   postcode,
		FullAddress: fmt.Sprintf("%d %s, %s %s %s",
			g.faker.Number(1, 999), g.faker.RandomString(streets),
			strings.ToUpper(g.faker.City()), state, postcode),
	}
}

func (g *Generator) postcode(state string) string {
	r := postcodeRanges[state]
	return fmt.Sprintf("%04d", g.faker.Number(r[0], r[1]))
}

// kind picks 30% exact ABN, 40% name variant and 30% unregistered.
func (g *Generator) kind() Kind {
	switch n := g.faker.Number(1, 10); {
	case n <= 3:
		return KindExactABN
	case n <= 7:
		return KindNameVariant
	default:
		return KindUnregistered
	}
}

func (g *Generator) scrapedRecord(i int, kind Kind, source model.RegistryRecord) model.ScrapedRecord {
	var name, abn string
	switch kind {
	case KindExactABN:
		name = g.variant(source.EntityName)
		abn = FormatABN(source.ABN)
	case KindNameVariant:
		name = g.variant(source.EntityName)
	default:
		name = g.faker.Company() + " " + g.faker.RandomString([]string{"Studio", "Collective", "Co-op", "Group"})
		if g.faker.Number(1, 5) == 1 {
			abn = g.faker.Numerify("### ###")
		}
	}

	slug := slugify(name)
	domain := fmt.Sprintf("www.%s-%d.com.au", slug, i+1)
	return model.ScrapedRecord{
		URL:         "https://" + domain + "/",
		Domain:      domain,
		CompanyName: name,
		Industry:    g.faker.RandomString(industries),
		ABN:         abn,
		Snippet: fmt.Sprintf("<p>Welcome to <b>%s</b>. %s</p><script>track()</script>",
			name, g.faker.Sentence(12)),
	}
}

// variant renders a registry name the way a website might: title case and
// with the legal suffix dropped or written differently.
func (g *Generator) variant(entityName string) string {
	base := entityName
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(base, " "+s) {
			base = strings.TrimSuffix(base, " "+s)
			break
		}
	}
	name := g.title.String(strings.ToLower(base))
	switch g.faker.Number(1, 3) {
	case 1:
		return name
	case 2:
		return name + " Pty Ltd"
	default:
		return name + " Limited"
	}
}

// FormatABN groups an 11 digit ABN as "12 345 678 901". Other input is
// returned unchanged.
func FormatABN(abn string) string {
	if len(abn) != 11 {
		return abn
	}
	return abn[:2] + " " + abn[2:5] + " " + abn[5:8] + " " + abn[8:]
}

func slugify(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
