package policy

import (
	"strings"

	"github.com/codegate/codegate/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	keyName        = "name"
	keyVersion     = "version"
	keyDescription = "description"
	keyBlocked     = "blocked_path_patterns"
	keyBlockedOld  = "blocked_file_patterns"
	keySensitive   = "sensitive_patterns"
	keyLogging     = "logging"
)

// Parse decodes a YAML or JSON policy document and validates it.
func Parse(data []byte) (Spec, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Spec{}, &LoadError{Msg: "decode document", Err: err}
	}
	return FromNode(&root)
}

// FromMap validates a generic document built in code or decoded by another
// format. Go maps are unordered, so sensitive_patterns taken from a map are
// ordered by rule name.
func FromMap(doc map[string]any) (Spec, error) {
	if doc == nil {
		return Spec{}, fieldError("", "empty document")
	}
	var n yaml.Node
	if err := n.Encode(doc); err != nil {
		return Spec{}, &LoadError{Msg: "encode document", Err: err}
	}
	return FromNode(&n)
}

// FromNode validates an already decoded YAML node tree.
func FromNode(n *yaml.Node) (Spec, error) {
	if n == nil {
		return Spec{}, fieldError("", "empty document")
	}
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return Spec{}, fieldError("", "empty document")
		}
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return Spec{}, fieldError("", "document must be a mapping")
	}

	fields := mappingFields(n)
	spec := Spec{LoggingEnabled: true}

	var err error
	if spec.Name, err = requiredString(fields, keyName); err != nil {
		return Spec{}, err
	}
	if spec.Version, err = requiredString(fields, keyVersion); err != nil {
		return Spec{}, err
	}
	if d, ok := fields[keyDescription]; ok && !isNull(d) {
		if spec.Description, err = scalarString(keyDescription, d); err != nil {
			return Spec{}, err
		}
	}

	blockedKey := keyBlocked
	blocked, ok := fields[keyBlocked]
	if !ok {
		blockedKey = keyBlockedOld
		blocked, ok = fields[keyBlockedOld]
	}
	if !ok {
		return Spec{}, fieldError(keyBlocked, "missing")
	}
	if spec.BlockedPathPatterns, err = parseBlocked(blockedKey, blocked); err != nil {
		return Spec{}, err
	}

	sensitive, ok := fields[keySensitive]
	if !ok {
		return Spec{}, fieldError(keySensitive, "missing")
	}
	if spec.SensitivePatterns, err = parseSensitive(sensitive); err != nil {
		return Spec{}, err
	}

	if lg, ok := fields[keyLogging]; ok && !isNull(lg) {
		if lg.Kind != yaml.MappingNode {
			return Spec{}, fieldError(keyLogging, "must be a mapping")
		}
		if en, ok := mappingFields(lg)["enabled"]; ok {
			var enabled bool
			if err := en.Decode(&enabled); err != nil {
				return Spec{}, &LoadError{Field: keyLogging + ".enabled", Msg: "must be a boolean", Err: err}
			}
			spec.LoggingEnabled = enabled
		}
	}
	return spec, nil
}

func parseBlocked(field string, n *yaml.Node) ([]string, error) {
	n = resolve(n)
	if isNull(n) {
		return []string{}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fieldError(field, "must be a list of glob strings")
	}
	out := make([]string, 0, len(n.Content))
	for i, item := range n.Content {
		s, err := scalarString(field, item)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(s) == "" {
			return nil, fieldError(field, "entry %d is empty", i)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseSensitive(n *yaml.Node) ([]PatternRule, error) {
	n = resolve(n)
	if isNull(n) {
		return []PatternRule{}, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fieldError(keySensitive, "must be a mapping of rule name to rule")
	}
	seen := make(map[string]bool, len(n.Content)/2)
	out := make([]PatternRule, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		field := keySensitive + "." + name
		if strings.TrimSpace(name) == "" {
			return nil, fieldError(keySensitive, "rule name is empty")
		}
		if seen[name] {
			return nil, fieldError(field, "duplicate rule name")
		}
		seen[name] = true
		rule, err := parseRule(name, n.Content[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

func parseRule(name string, n *yaml.Node) (PatternRule, error) {
	field := keySensitive + "." + name
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return PatternRule{}, fieldError(field, "must be a mapping")
	}
	body := mappingFields(n)
	rule := PatternRule{Name: name, Severity: types.SevMed}

	p, ok := body["pattern"]
	if !ok || isNull(p) {
		return PatternRule{}, fieldError(field+".pattern", "missing")
	}
	var err error
	if rule.Pattern, err = scalarString(field+".pattern", p); err != nil {
		return PatternRule{}, err
	}
	if rule.Pattern == "" {
		return PatternRule{}, fieldError(field+".pattern", "empty")
	}
	if d, ok := body["description"]; ok && !isNull(d) {
		if rule.Description, err = scalarString(field+".description", d); err != nil {
			return PatternRule{}, err
		}
	}
	if s, ok := body["severity"]; ok && !isNull(s) {
		raw, err := scalarString(field+".severity", s)
		if err != nil {
			return PatternRule{}, err
		}
		sev := types.Severity(strings.ToLower(strings.TrimSpace(raw)))
		if !sev.Valid() {
			return PatternRule{}, fieldError(field+".severity", "unknown severity %q (want critical|high|medium|low)", raw)
		}
		rule.Severity = sev
	}
	if nm, ok := body["name"]; ok && !isNull(nm) {
		v, err := scalarString(field+".name", nm)
		if err != nil {
			return PatternRule{}, err
		}
		if v != name {
			return PatternRule{}, fieldError(field+".name", "%q does not match its key", v)
		}
	}
	return rule, nil
}

// mappingFields indexes a mapping node by key. Later duplicates win, as with
// a plain map decode.
func mappingFields(n *yaml.Node) map[string]*yaml.Node {
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out[n.Content[i].Value] = n.Content[i+1]
	}
	return out
}

func requiredString(fields map[string]*yaml.Node, key string) (string, error) {
	n, ok := fields[key]
	if !ok || isNull(n) {
		return "", fieldError(key, "missing")
	}
	s, err := scalarString(key, n)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", fieldError(key, "empty")
	}
	return s, nil
}

// scalarString accepts any scalar so that "version: 1.0" reads as "1.0".
func scalarString(field string, n *yaml.Node) (string, error) {
	n = resolve(n)
	if n.Kind != yaml.ScalarNode {
		return "", fieldError(field, "must be a string")
	}
	return n.Value, nil
}

// resolve follows an alias ("*anchor") to the node it names.
func resolve(n *yaml.Node) *yaml.Node {
	if n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}
