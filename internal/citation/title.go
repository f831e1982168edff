package citation

import (
	"regexp"
	"strings"
	"unicode"
)

// PreservedTokens are kept verbatim wherever they occur inside a title word,
// compared case-insensitively. Organisms, genes, diseases, assays, acronyms.
var PreservedTokens = []string{
	// Pathogens and diseases
	"COVID", "SARS", "MERS-CoV", "HIV", "HPV", "CMV", "EBV",
	"ARDS", "COPD", "IPF", "ICU", "Alzheimer", "Parkinson", "Crohn",
	// Molecules and cell markers
	"ACE2", "RNA", "DNA", "CRISPR", "MHC", "HLA", "TCR", "BCR",
	"IL-", "TNF", "IFN", "TGF", "CD4", "CD8", "CD14", "CD16", "Th17", "Treg",
	"KRAS", "EGFR", "NF-κB",
	// Assays, resources, methods
	"UCSC", "GTEx", "ENCODE", "ChIP", "ATAC", "Hi-C", "GWAS", "QTL", "SNP",
	"UMAP", "iPSC", "BALF", "Markov", "Bayesian", "Gaussian",
	// Organisms
	"Drosophila", "Escherichia", "Mycobacterium", "Pseudomonas", "Staphylococcus",
	"Streptococcus", "Klebsiella", "Legionella", "Aspergillus", "Candida",
	"Saccharomyces", "Arabidopsis",
}

// wordRule reports whether word, following prev, keeps its original casing.
type wordRule func(word, prev string) bool

// preserveRules are checked in order; the first that holds keeps the word.
var preserveRules = []wordRule{
	func(word, _ string) bool { return containsPreservedToken(word) },
	func(word, prev string) bool { return word == "Cell" && prev == "UCSC" },
	func(word, prev string) bool { return word == "Browser:" && prev == "UCSC" },
	func(word, _ string) bool { return word == "T" },
	func(word, prev string) bool { return word == "A" && strings.EqualFold(prev, "influenza") },
}

var (
	closeTagThenLetter = regexp.MustCompile(`(</[A-Za-z][A-Za-z0-9]*>)(\pL)`)
	letterThenOpenTag  = regexp.MustCompile(`(\pL)(<[A-Za-z][A-Za-z0-9]*(?:\s[^>]*)?>)`)
	italicMarkup       = regexp.MustCompile(`(?is)<i>(.*?)</i>`)
	superscriptMarkup  = regexp.MustCompile(`(?is)<sup>(.*?)</sup>`)
)

// CommonWords are ordinary English words that happen to contain a preserved
// token ("journal" holds "rna", "particular" holds "icu"). They are always
// lower-cased.
var CommonWords = newWordSet(
	// rna
	"journal", "journals", "internal", "internally", "external", "externally",
	"eternal", "maternal", "paternal", "nocturnal", "diurnal", "alternative",
	"alternatives", "alternatively", "alternate", "alternating", "alternation",
	"governance", "tournament", "hibernation", "internalization", "internalized",
	// hiv
	"archive", "archives", "archived", "archival", "archiving",
	// icu
	"particular", "particularly", "difficult", "difficulty", "difficulties",
	"curriculum", "curricula", "vehicular", "ventricular", "follicular",
	"reticulum", "reticular", "vesicular", "articular", "auricular",
	"testicular", "meticulous",
	// ards
	"towards", "standards", "rewards", "regards", "hazards", "cards", "wards",
	"boards", "guards", "safeguards", "afterwards", "onwards", "upwards",
	"downwards", "backwards", "forwards", "inwards", "outwards",
	// encode
	"encoded", "encodes", "encoder", "encoders",
	// candida
	"candidate", "candidates", "candidacy",
)

func newWordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func containsPreservedToken(word string) bool {
	lower := strings.ToLower(word)
	core := strings.TrimFunc(lower, func(r rune) bool { return !unicode.IsLetter(r) })
	if _, common := CommonWords[core]; common {
		return false
	}
	for _, tok := range PreservedTokens {
		if strings.Contains(lower, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}

// FormatTitle converts a rich-text title to sentence case with markdown
// emphasis. The first word keeps its casing, as does any word matched by
// preserveRules; every other word is lower-cased.
func FormatTitle(raw string) string {
	s := closeTagThenLetter.ReplaceAllString(raw, "$1 $2")
	s = letterThenOpenTag.ReplaceAllString(s, "$1 $2")

	original := strings.Fields(s)
	words := make([]string, len(original))
	for i, word := range original {
		if i == 0 || keepCase(word, original[i-1]) {
			words[i] = word
			continue
		}
		words[i] = strings.ToLower(word)
	}
	s = strings.Join(words, " ")

	s = italicMarkup.ReplaceAllString(s, "_${1}_")
	s = superscriptMarkup.ReplaceAllString(s, Superscript("${1}"))
	return s
}

func keepCase(word, prev string) bool {
	for _, rule := range preserveRules {
		if rule(word, prev) {
			return true
		}
	}
	return false
}

// Superscript wraps s in the footnote-style superscript marker.
func Superscript(s string) string {
	return "^" + s + "^"
}
