package transcript

import (
	"os"

	"gopkg.in/yaml.v3"
)

func Save(path string, document *Document) error {
	data, err := yaml.Marshal(document)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0640)
}
