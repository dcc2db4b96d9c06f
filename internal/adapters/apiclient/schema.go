package apiclient

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed activities.schema.json
var activitiesSchemaJSON string

var activitiesSchema = mustSchema(activitiesSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("apiclient: invalid schema: %v", err))
	}
	return s
}

func validateActivities(body []byte) error {
	result, err := activitiesSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("activities response failed validation: %s", strings.Join(errs, "; "))
	}
	return nil
}
