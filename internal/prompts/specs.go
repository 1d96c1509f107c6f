package prompts

const entitySpec = `Respond with a JSON object matching this exact structure:

{
  "entity_type": "<type>",
  "confidence": 0.0,
  "reasoning": "<explanation>",
  "secondary_types": [
    {"entity_type": "<type>", "confidence": 0.0}
  ]
}

Field constraints:
- entity_type: One of inventory, orders, products, suppliers, customers,
  financial. The single best classification for the file.
- confidence: Number between 0 and 1 reflecting how certain the
  classification is given the column set and samples.
- reasoning: Brief explanation naming the columns that drove the
  classification.
- secondary_types: Other plausible entity types, strongest first, each
  with its own confidence. Empty array when no other type is plausible.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Never invent an entity type outside the listed set
- confidence values must stay within [0, 1]`

const columnsSpec = `Respond with a JSON object matching this exact structure:

{
  "columns": [
    {
      "source_column": "<original header>",
      "target_field": "<standard_field>",
      "data_type": "<text|integer|decimal|date|datetime|boolean|currency>",
      "confidence": 0.0,
      "reasoning": "<explanation>",
      "alternatives": [
        {"target_field": "<standard_field>", "confidence": 0.0}
      ]
    }
  ]
}

Field constraints:
- columns: One entry per source column, in the same order as the input
  header list. Never omit a column and never add one.
- source_column: The original header exactly as provided.
- target_field: The suggested standard field in snake_case.
- data_type: The column's inferred type based on its sample values.
  Use currency only when values carry a currency symbol or the header
  names a monetary amount; otherwise prefer decimal.
- confidence: Number between 0 and 1 for this mapping.
- reasoning: Brief explanation of why the mapping fits.
- alternatives: Other plausible standard fields, strongest first, each
  with its own confidence. Empty array when the mapping is unambiguous.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Preserve the input column order exactly
- confidence values must stay within [0, 1]`

var specs = map[Stage]string{
	StageEntity:  entitySpec,
	StageColumns: columnsSpec,
}

// DefaultSpec returns the hardcoded output specification for a
// classification stage. Specifications define the expected response format
// and behavioral constraints and are not overridable.
// Returns ErrInvalidStage if the stage is not recognized.
func DefaultSpec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
