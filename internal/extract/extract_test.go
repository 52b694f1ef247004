package extract

import (
	"sort"
	"testing"

	"github.com/midiakiasat/MAILSIEVE/internal/domain"
)

func page(body string) domain.Page {
	return domain.Page{URL: "https://acme.com/about", Body: body}
}

func TestEmailScannerMailtoAndObfuscated(t *testing.T) {
	body := `<html><body>
		<a href="mailto:jane.smith@acme.com?subject=hi">Write us</a>
		<a href="mailto:a@acme.com,b@acme.com">Two</a>
		<p>Reach sales [at] acme [dot] com or support&#64;acme.com</p>
		<p>Ignore partner@elsewhere.org entirely.</p>
	</body></html>`

	_, emails := (&EmailScanner{}).Extract(page(body), "acme.com")
	sort.Strings(emails)
	want := []string{"a@acme.com", "b@acme.com", "jane.smith@acme.com", "sales@acme.com", "support@acme.com"}
	if len(emails) != len(want) {
		t.Fatalf("emails = %v, want %v", emails, want)
	}
	for i := range want {
		if emails[i] != want[i] {
			t.Errorf("emails[%d] = %q, want %q", i, emails[i], want[i])
		}
	}
}

func TestEmailScannerKeepsSubdomains(t *testing.T) {
	body := `<p>mail shop@store.acme.com or old@acmecorp.com</p>`
	_, emails := (&EmailScanner{}).Extract(page(body), "acme.com")
	if len(emails) != 1 || emails[0] != "shop@store.acme.com" {
		t.Errorf("emails = %v, want only the subdomain address", emails)
	}
}

func TestJSONLDGraphWalk(t *testing.T) {
	body := `<html><head><script type="application/ld+json">
	{
	  "@context": "https://schema.org",
	  "@graph": [
	    {"@type": "Organization", "name": "Acme", "founder": {"@type": "Person", "name": "Jane Smith", "jobTitle": "Founder"}},
	    {"@type": "Person", "name": "Bob Carter"}
	  ]
	}
	</script><script type="application/ld+json">{not json</script></head></html>`

	cands, _ := (&JSONLDExtractor{}).Extract(page(body), "acme.com")
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(cands), cands)
	}
	byName := map[string]domain.PersonCandidate{}
	for _, c := range cands {
		byName[c.First+" "+c.Last] = c
	}
	jane, ok := byName["Jane Smith"]
	if !ok || jane.Weight != weightStructuredRole {
		t.Errorf("Jane Smith = %+v, want role-boosted weight %d", jane, weightStructuredRole)
	}
	bob, ok := byName["Bob Carter"]
	if !ok || bob.Weight != weightStructured {
		t.Errorf("Bob Carter = %+v, want base weight %d", bob, weightStructured)
	}
}

func TestHCard(t *testing.T) {
	body := `<div class="h-card">
		<span class="p-name">Mario Rossi</span>
		<span class="p-job-title">Titolare</span>
	</div>`

	cands, _ := (&HCardExtractor{}).Extract(page(body), "acme.com")
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	c := cands[0]
	if c.First != "Mario" || c.Last != "Rossi" || c.Weight != weightStructuredRole {
		t.Errorf("candidate = %+v", c)
	}
}

func TestRoleProximity(t *testing.T) {
	body := `<html><body>
		<p>Our story began in 2005 when Founder Jane Smith opened the first shop.</p>
		<p>Nothing to see here: director of photography unknown.</p>
	</body></html>`

	cands, _ := (&RoleProximityExtractor{}).Extract(page(body), "acme.com")
	if len(cands) == 0 {
		t.Fatal("no candidates found")
	}
	c := cands[0]
	if c.First != "Jane" || c.Last != "Smith" {
		t.Errorf("candidate = %+v, want Jane Smith", c)
	}
	if c.Weight != weightRoleProximity {
		t.Errorf("weight = %d, want %d", c.Weight, weightRoleProximity)
	}
}

func TestRoleProximityWindowLimit(t *testing.T) {
	filler := make([]byte, 0, proximityWindow+50)
	for len(filler) < proximityWindow+40 {
		filler = append(filler, []byte("lorem ipsum ")...)
	}
	body := `<p>CEO ` + string(filler) + ` Jane Smith</p>`

	cands, _ := (&RoleProximityExtractor{}).Extract(page(body), "acme.com")
	if len(cands) != 0 {
		t.Errorf("name outside the window was matched: %+v", cands)
	}
}

func TestBlockHeuristicStrict(t *testing.T) {
	body := `<div class="team-member">Owner Anna Bell</div>
		<div class="team-member">Anna Bell</div>
		<h2>Great Offers</h2>`

	strict := &BlockHeuristicExtractor{Strict: true}
	cands, _ := strict.Extract(page(body), "acme.com")
	if len(cands) != 1 {
		t.Fatalf("strict mode: got %d candidates, want 1: %+v", len(cands), cands)
	}
	if cands[0].First != "Anna" || cands[0].Last != "Bell" || cands[0].Weight != weightBlockHeuristic {
		t.Errorf("candidate = %+v", cands[0])
	}

	loose := &BlockHeuristicExtractor{Strict: false}
	cands, _ = loose.Extract(page(body), "acme.com")
	if len(cands) != 2 {
		t.Errorf("loose mode: got %d candidates, want 2: %+v", len(cands), cands)
	}
}

func TestPipelineDeduplicatesEmails(t *testing.T) {
	body := `<a href="mailto:info@acme.com">a</a><p>info@acme.com again</p>`
	p := NewPipeline(true)
	_, emails := p.Run([]domain.Page{page(body), page(body)}, "acme.com")
	if len(emails) != 1 || emails[0] != "info@acme.com" {
		t.Errorf("emails = %v, want single info@acme.com", emails)
	}
}
