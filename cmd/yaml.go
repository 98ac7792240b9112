package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlUnmarshal decodes one YAML document into out. Unknown keys are an
// error so a misspelt profile field does not silently fall back to a default.
// An empty document leaves out untouched.
func yamlUnmarshal(b []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("yaml unmarshal: %w", err)
	}
	return nil
}

// UnmarshalYAML accepts both `cmd: python3 server.py` and
// `cmd: [python3, server.py]`; the list form is quoted back into one line.
func (c *serverCommand) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var argv []string
		if err := value.Decode(&argv); err != nil {
			return err
		}
		*c = serverCommand(shellJoin(argv))
		return nil
	}
	var line string
	if err := value.Decode(&line); err != nil {
		return err
	}
	*c = serverCommand(line)
	return nil
}
