package manifest

import (
	"fmt"
	"strings"
)

// decodeDependency interprets one dependency value: a version string or a
// table, which inherits from the workspace when it has a workspace key.
func decodeDependency(v any) (Dependency, error) {
	switch v := v.(type) {
	case string:
		return Dependency{Detail: &DependencyDetail{Version: v}}, nil
	case map[string]any:
		if _, ok := v["workspace"]; ok {
			inh, err := decodeInherited(v)
			return Dependency{Inherited: inh}, err
		}
		detail, err := decodeDetail(v)
		return Dependency{Detail: detail}, err
	default:
		return Dependency{}, fmt.Errorf("expected a version string or a table, found %T", v)
	}
}

func decodeInherited(v map[string]any) (*InheritedDependency, error) {
	var (
		inh InheritedDependency
		err error
	)
	if inh.Workspace, err = boolField(v, "workspace"); err != nil {
		return nil, err
	}
	if inh.Features, err = stringList(v, "features"); err != nil {
		return nil, err
	}
	if inh.Optional, err = boolField(v, "optional"); err != nil {
		return nil, err
	}
	for _, key := range []string{"default-features", "default_features"} {
		if _, ok := v[key]; !ok {
			continue
		}
		b, err := boolField(v, key)
		if err != nil {
			return nil, err
		}
		inh.DefaultFeatures = &b
		inh.DefaultFeaturesKey = key
		break
	}
	return &inh, nil
}

func decodeDetail(v map[string]any) (*DependencyDetail, error) {
	var (
		d   DependencyDetail
		err error
	)
	for key, dst := range map[string]*string{
		"version":  &d.Version,
		"path":     &d.Path,
		"git":      &d.Git,
		"branch":   &d.Branch,
		"tag":      &d.Tag,
		"rev":      &d.Rev,
		"registry": &d.Registry,
		"package":  &d.Package,
	} {
		if *dst, err = stringField(v, key); err != nil {
			return nil, err
		}
	}
	if d.Features, err = stringList(v, "features"); err != nil {
		return nil, err
	}
	if d.Optional, err = boolField(v, "optional"); err != nil {
		return nil, err
	}
	for _, key := range []string{"default-features", "default_features"} {
		if _, ok := v[key]; !ok {
			continue
		}
		b, err := boolField(v, key)
		if err != nil {
			return nil, err
		}
		d.DefaultFeatures = &b
		break
	}
	return &d, nil
}

func stringField(v map[string]any, key string) (string, error) {
	x, ok := v[key]
	if !ok {
		return "", nil
	}
	s, ok := x.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected a string, found %T", key, x)
	}
	return s, nil
}

func boolField(v map[string]any, key string) (bool, error) {
	x, ok := v[key]
	if !ok {
		return false, nil
	}
	b, ok := x.(bool)
	if !ok {
		return false, fmt.Errorf("%s: expected a boolean, found %T", key, x)
	}
	return b, nil
}

func stringList(v map[string]any, key string) ([]string, error) {
	x, ok := v[key]
	if !ok {
		return nil, nil
	}
	items, ok := x.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected an array, found %T", key, x)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected a string, found %T", key, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func joinKey(path []string) string { return strings.Join(path, ".") }
