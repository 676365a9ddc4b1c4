package store

import jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

// taskListSchema validates the tasks array of a stored document. Legacy
// documents written by earlier versions may omit IDs and use "" for "no
// priority" or "no due date"; the schema admits those forms and the
// loader normalizes them.
const taskListSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title", "completed"],
    "properties": {
      "id": {"type": "string"},
      "title": {"type": "string", "minLength": 1},
      "priority": {"enum": ["high", "medium", "low", ""]},
      "due_date": {"type": ["string", "null"]},
      "completed": {"type": "boolean"},
      "subtasks": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["title", "completed"],
          "properties": {
            "id": {"type": "string"},
            "title": {"type": "string", "minLength": 1},
            "completed": {"type": "boolean"}
          }
        }
      }
    }
  }
}`

var compiledTaskListSchema = jsonschema.MustCompileString("tasks.schema.json", taskListSchema)
