// Package taxonomy classifies items against a YAML-defined rule set
//
// Rules carry case-insensitive regex patterns per label. Invalid
// patterns are logged and skipped at load so one bad rule never takes
// down classification for the rest
package taxonomy

import (
	"io"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	perr "cintel/internal/platform/errors"
	"cintel/internal/platform/logger"
)

// Rules is the on-disk rule document
type Rules struct {
	// Projects maps a project label to its match patterns
	Projects map[string][]string `yaml:"projects"`

	// Topics maps a topic tag to its match patterns
	Topics map[string][]string `yaml:"topics"`

	// Arches maps an architecture tag to its match patterns
	Arches map[string][]string `yaml:"arches"`

	// Priority marks patterns that raise an item's signal
	Priority struct {
		High []string `yaml:"high"`
	} `yaml:"priority"`

	// Noise marks patterns for items that should be dropped outright
	Noise []string `yaml:"noise"`

	// HostProjects maps a feed host to a fixed project label, used when
	// no project pattern matches
	HostProjects map[string]string `yaml:"host_projects"`
}

// Result is one item's classification
type Result struct {
	// Project is the owning project label, or "" when undetermined
	Project string

	// Topics and Arches are the matched tags, sorted
	Topics []string
	Arches []string

	// HighPriority reports a priority.high pattern match
	HighPriority bool

	// Noise reports a noise pattern match, callers drop such items
	Noise bool
}

type labelRule struct {
	label string
	re    *regexp.Regexp
}

// Classifier holds compiled rules
type Classifier struct {
	projects []labelRule
	topics   []labelRule
	arches   []labelRule
	high     []*regexp.Regexp
	noise    []*regexp.Regexp
	hosts    map[string]string
}

// Load reads and compiles a rules file
func Load(path string) (*Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeNotFound, "open taxonomy rules")
	}
	defer f.Close()
	return Parse(f)
}

// Parse compiles a rules document from r
func Parse(r io.Reader) (*Classifier, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "read taxonomy rules")
	}

	var rules Rules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "parse taxonomy rules")
	}
	return Compile(rules), nil
}

// Compile builds a classifier, dropping patterns that fail to compile
func Compile(rules Rules) *Classifier {
	c := &Classifier{hosts: rules.HostProjects}
	c.projects = compileSet("project", rules.Projects)
	c.topics = compileSet("topic", rules.Topics)
	c.arches = compileSet("arch", rules.Arches)
	for _, p := range rules.Priority.High {
		re, err := compile(p)
		if err != nil {
			logger.Named("taxonomy").Warn().Err(err).Str("pattern", p).Msg("skipping invalid priority pattern")
			continue
		}
		c.high = append(c.high, re)
	}
	for _, p := range rules.Noise {
		re, err := compile(p)
		if err != nil {
			logger.Named("taxonomy").Warn().Err(err).Str("pattern", p).Msg("skipping invalid noise pattern")
			continue
		}
		c.noise = append(c.noise, re)
	}
	return c
}

func compileSet(kind string, set map[string][]string) []labelRule {
	// deterministic rule order regardless of map iteration
	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var out []labelRule
	for _, label := range labels {
		for _, p := range set[label] {
			re, err := compile(p)
			if err != nil {
				logger.Named("taxonomy").Warn().
					Err(err).Str("kind", kind).Str("label", label).Str("pattern", p).
					Msg("skipping invalid pattern")
				continue
			}
			out = append(out, labelRule{label: label, re: re})
		}
	}
	return out
}

func compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// Classify matches text (typically title plus excerpt) and host against
// the rule set. The first matching project pattern wins; topics and
// arches accumulate every distinct match
func (c *Classifier) Classify(text, host string) Result {
	var res Result

	for _, r := range c.projects {
		if r.re.MatchString(text) {
			res.Project = r.label
			break
		}
	}
	if res.Project == "" && host != "" {
		res.Project = c.hosts[host]
	}

	res.Topics = matchAll(c.topics, text)
	res.Arches = matchAll(c.arches, text)

	for _, re := range c.high {
		if re.MatchString(text) {
			res.HighPriority = true
			break
		}
	}
	for _, re := range c.noise {
		if re.MatchString(text) {
			res.Noise = true
			break
		}
	}
	return res
}

func matchAll(rules []labelRule, text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range rules {
		if seen[r.label] || !r.re.MatchString(text) {
			continue
		}
		seen[r.label] = true
		out = append(out, r.label)
	}
	sort.Strings(out)
	return out
}
