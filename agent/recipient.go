package agent

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

var honorifics = []string{"mr.", "ms.", "mrs.", "dr.", "prof.", "mr ", "ms ", "mrs ", "dr ", "prof "}

const (
	// autoAcceptScore is the similarity above which a single fuzzy match is
	// taken without asking. Below it ambiguity is always surfaced to the
	// user, never silently guessed.
	autoAcceptScore = 0.85
	// candidateScore is the floor for listing a contact as a candidate.
	candidateScore = 0.5
	// maxCandidates caps the disambiguation list shown to the user.
	maxCandidates = 3
)

// Resolution is the outcome of resolving free-form recipient text to
// concrete email addresses.
type Resolution struct {
	Emails            []string
	NeedsConfirmation bool
	Prompt            string
	Candidates        []Contact
}

// Resolved reports whether at least one address was found without any open
// question for the user.
func (r Resolution) Resolved() bool {
	return len(r.Emails) > 0 && !r.NeedsConfirmation
}

// RecipientResolver turns natural-language recipient text ("send it to Jan")
// into addresses, using explicit addresses when present and fuzzy contact
// matching otherwise.
type RecipientResolver struct {
	contacts ContactsService
	log      ExecutionLog
}

// NewRecipientResolver creates a resolver backed by the contacts service.
func NewRecipientResolver(contacts ContactsService, log ExecutionLog) *RecipientResolver {
	if log == nil {
		log = NopLog{}
	}
	return &RecipientResolver{contacts: contacts, log: log}
}

// Resolve maps text to recipient addresses. Explicit addresses in the text
// win outright; otherwise the actor's contact directory is fuzzy-matched.
// A single match at or above the auto-accept score resolves silently; a
// weaker best match or multiple plausible candidates produce a
// disambiguation prompt instead of a guess.
func (r *RecipientResolver) Resolve(ctx context.Context, text, actor string) Resolution {
	if emails := emailPattern.FindAllString(text, -1); len(emails) > 0 {
		r.log.Record(ctx, actor, "RECIPIENT_RESOLVER", PhaseSuccess, map[string]any{"method": "explicit", "emails": emails})
		return Resolution{Emails: emails}
	}

	contacts, err := r.contacts.Directory(ctx, actor, 100)
	if err != nil {
		r.log.Record(ctx, actor, "RECIPIENT_RESOLVER", PhaseFailed, map[string]any{"reason": err.Error()})
		return Resolution{
			NeedsConfirmation: true,
			Prompt:            "I couldn't access your contacts. Please provide an email address.",
		}
	}

	matches := fuzzyMatchContacts(text, contacts)
	if len(matches) == 0 {
		r.log.Record(ctx, actor, "RECIPIENT_RESOLVER", PhaseFailed, map[string]any{"query": text, "reason": "no_match"})
		return Resolution{
			NeedsConfirmation: true,
			Prompt:            fmt.Sprintf("I couldn't find a contact for %q. Would you like to enter an email address directly?", text),
		}
	}

	best := matches[0]
	if best.score >= autoAcceptScore && (len(matches) == 1 || matches[1].score < autoAcceptScore) {
		r.log.Record(ctx, actor, "RECIPIENT_RESOLVER", PhaseSuccess, map[string]any{
			"method": "fuzzy", "query": text, "matched": best.contact.Email, "score": best.score,
		})
		return Resolution{Emails: []string{best.contact.Email}}
	}

	candidates := make([]Contact, 0, maxCandidates)
	var lines []string
	for i, m := range matches {
		if i == maxCandidates {
			break
		}
		candidates = append(candidates, m.contact)
		lines = append(lines, fmt.Sprintf("- %s (%s)", m.contact.Name, m.contact.Email))
	}
	r.log.Record(ctx, actor, "RECIPIENT_RESOLVER", PhaseFailed, map[string]any{
		"query": text, "reason": "ambiguous", "candidates": len(candidates),
	})
	return Resolution{
		NeedsConfirmation: true,
		Candidates:        candidates,
		Prompt: fmt.Sprintf("I found multiple possible matches for %q:\n%s\nWhich one did you mean?",
			text, strings.Join(lines, "\n")),
	}
}

type contactMatch struct {
	contact Contact
	score   float64
}

func fuzzyMatchContacts(query string, contacts []Contact) []contactMatch {
	queryNorm := normalizeName(query)
	var matches []contactMatch
	for _, c := range contacts {
		score := nameSimilarity(queryNorm, normalizeName(c.Name))
		if s := emailSimilarity(strings.ToLower(strings.TrimSpace(query)), strings.ToLower(c.Email)); s > score {
			score = s
		}
		if score > candidateScore {
			matches = append(matches, contactMatch{contact: c, score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	return matches
}

// normalizeName lowercases, strips honorifics, and collapses whitespace so
// "Dr. Jan Kowalski" and "jan kowalski" compare equal.
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, h := range honorifics {
		name = strings.ReplaceAll(name, h, "")
	}
	return strings.Join(strings.Fields(name), " ")
}

// tokenWeight discounts a single-token match slightly against a full-name
// match, so "jan kowalski" outranks "jan" for the query "jan kowalski".
const tokenWeight = 0.95

// nameSimilarity scores a query against a contact name, considering both the
// whole name and its individual tokens. First-name-only queries ("jan") must
// still rank the right contacts highly.
func nameSimilarity(query, name string) float64 {
	best := similarity(query, name)
	for _, tok := range strings.Fields(name) {
		if s := similarity(query, tok) * tokenWeight; s > best {
			best = s
		}
	}
	return best
}

// emailSimilarity scores a query against an address, also trying the local
// part alone so "jan" comes close to "jan@x.com".
func emailSimilarity(query, email string) float64 {
	best := similarity(query, email)
	if at := strings.IndexByte(email, '@'); at > 0 {
		if s := similarity(query, email[:at]) * tokenWeight; s > best {
			best = s
		}
	}
	return best
}

// similarity is an edit-distance ratio in [0,1]; 1 means identical.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	return 1 - float64(dist)/float64(longest)
}
