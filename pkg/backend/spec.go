package backend

import (
	"fmt"
	"regexp"
	"strings"
)

// Command is a program name plus an explicit argument list. Commands are
// never passed through a shell, so URLs and filenames with special
// characters need no quoting.
type Command struct {
	Name string
	Args []string
}

// String renders the command for diagnostics.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Spec describes how to drive one backend's native client. Specs are
// immutable, data-only values; look them up with SpecFor.
type Spec struct {
	// LogLinePattern extracts revision ids from log output. It must have
	// exactly one capture group; lines that do not match are dropped. A nil
	// pattern means every non-empty output line is a revision id verbatim.
	LogLinePattern *regexp.Regexp

	// PassURL selects how commands address the repository: true substitutes
	// the URL into the argument list, false runs the command with the
	// working directory set to the local checkout path.
	PassURL bool

	// StripLevel is the number of leading path components the diffstat
	// formatter removes, matching the backend's diff header convention.
	StripLevel int

	log  func(url string) Command
	diff func(rev, url string) Command
}

// LogCommand returns the revision-enumeration command. The url argument is
// ignored when PassURL is false.
func (s Spec) LogCommand(url string) Command {
	return s.log(url)
}

// DiffCommand returns the native diff command for a single revision.
func (s Spec) DiffCommand(rev, url string) Command {
	return s.diff(rev, url)
}

// ExtractRevisions parses native log output into the ordered revision id
// list, preserving log-listing order. Lines not matching LogLinePattern are
// dropped; the dropped count is returned so callers can report it at debug
// level. Without a pattern, empty lines are skipped and everything else is
// taken verbatim.
func (s Spec) ExtractRevisions(output string) (revs []string, dropped int) {
	for _, line := range strings.Split(output, "\n") {
		if s.LogLinePattern == nil {
			if line != "" {
				revs = append(revs, line)
			}
			continue
		}
		m := s.LogLinePattern.FindStringSubmatch(line)
		if m == nil {
			if line != "" {
				dropped++
			}
			continue
		}
		revs = append(revs, m[1])
	}
	return revs, dropped
}

var (
	svnLogLine = regexp.MustCompile(`^r([0-9]+)`)
	hgLogLine  = regexp.MustCompile(`^[0-9]+:(.*)`)
)

// specs is the complete command table. One entry per backend type, keyed by
// the closed Type set; SpecFor is the only way in.
var specs = map[Type]Spec{
	Subversion: {
		LogLinePattern: svnLogLine,
		PassURL:        true,
		StripLevel:     0,
		log: func(url string) Command {
			return Command{Name: "svn", Args: []string{"log", "-q", url}}
		},
		diff: func(rev, url string) Command {
			return Command{Name: "svn", Args: []string{"diff", "-c", rev, url}}
		},
	},
	Git: {
		PassURL:    false,
		StripLevel: 1,
		log: func(string) Command {
			return Command{Name: "git", Args: []string{"rev-list", "HEAD"}}
		},
		diff: func(rev, _ string) Command {
			return Command{Name: "git", Args: []string{"diff-tree", "-U", "--no-renames", "--root", rev}}
		},
	},
	Mercurial: {
		LogLinePattern: hgLogLine,
		PassURL:        false,
		StripLevel:     1,
		log: func(string) Command {
			return Command{Name: "hg", Args: []string{"log", "-q"}}
		},
		diff: func(rev, _ string) Command {
			return Command{Name: "hg", Args: []string{"diff", "-c", rev}}
		},
	},
}

// SpecFor returns the command spec for a backend type. Unknown types yield
// an ErrUnsupportedBackend error instead of a zero value.
func SpecFor(t Type) (Spec, error) {
	s, ok := specs[t]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnsupportedBackend, string(t))
	}
	return s, nil
}
