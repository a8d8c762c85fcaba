package command

import "strings"

// Args is a command line split the way classic Unix utilities read it:
// combined short flags (-ef), separate flags (-e -f), long options
// (--name, --name=value), a "--" terminator, and positionals.
type Args struct {
	Raw         []string
	Flags       map[string]bool
	Options     map[string]string
	Positionals []string
}

// ParseArgs splits argv (without the command name).  It never fails;
// anything it does not recognise is a positional.
func ParseArgs(argv []string) Args {
	a := Args{
		Raw:     argv,
		Flags:   make(map[string]bool),
		Options: make(map[string]string),
	}
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--":
			a.Positionals = append(a.Positionals, argv[i+1:]...)
			return a
		case strings.HasPrefix(arg, "--"):
			name := arg[2:]
			if k, v, ok := strings.Cut(name, "="); ok {
				a.Options[k] = v
			} else {
				a.Flags[name] = true
			}
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			for _, r := range arg[1:] {
				a.Flags[string(r)] = true
			}
		default:
			a.Positionals = append(a.Positionals, arg)
		}
	}
	return a
}

// Has reports whether any of flags was given.
func (a Args) Has(flags ...string) bool {
	for _, f := range flags {
		if a.Flags[f] {
			return true
		}
	}
	return false
}

// All reports whether every one of flags was given.
func (a Args) All(flags ...string) bool {
	for _, f := range flags {
		if !a.Flags[f] {
			return false
		}
	}
	return true
}

// Option returns the value of --name=value, or def.
func (a Args) Option(name, def string) string {
	if v, ok := a.Options[name]; ok {
		return v
	}
	return def
}
