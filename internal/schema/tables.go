package schema

// The replicated table set of the learning platform. Mutable tables are the
// ones with edit flows in the product (names, titles, statuses, profiles);
// insert-only tables are append logs (messages, completions, issued keys).

func intField(name string) Field       { return Field{Name: name, Type: TypeInteger, Required: true} }
func optIntField(name string) Field    { return Field{Name: name, Type: TypeInteger} }
func strField(name string) Field       { return Field{Name: name, Type: TypeString, Required: true} }
func optStrField(name string) Field    { return Field{Name: name, Type: TypeString} }
func tsField(name string) Field        { return Field{Name: name, Type: TypeTimestamp, Required: true} }
func optTsField(name string) Field     { return Field{Name: name, Type: TypeTimestamp} }

var defaultRegistry = MustNew(
	Table{
		Name:           "organizations",
		Classification: Mutable,
		Fields: []Field{
			intField("id"), strField("slug"), strField("name"),
			optStrField("default_logo_color"), tsField("created_at"),
		},
	},
	Table{
		Name:           "org_api_keys",
		Classification: InsertOnly,
		Fields: []Field{
			intField("id"), intField("org_id"), strField("hashed_key"), tsField("created_at"),
		},
	},
	Table{
		Name:           "users",
		Classification: Mutable,
		Fields: []Field{
			intField("id"), strField("email"), optStrField("first_name"),
			optStrField("middle_name"), optStrField("last_name"),
			optStrField("default_dp_color"), tsField("created_at"),
		},
	},
	Table{
		Name:           "courses",
		Classification: Mutable,
		Fields: []Field{
			intField("id"), intField("org_id"), strField("name"), tsField("created_at"),
		},
	},
	Table{
		Name:           "milestones",
		Classification: Mutable,
		Fields: []Field{
			intField("id"), intField("org_id"), strField("name"), optStrField("color"),
		},
	},
	Table{
		Name:           "tasks",
		Classification: Mutable,
		Fields: []Field{
			intField("id"), intField("org_id"), strField("type"), optStrField("blocks"),
			optStrField("title"), strField("status"), tsField("created_at"),
			optTsField("deleted_at"), optTsField("scheduled_publish_at"),
		},
	},
	Table{
		Name:           "questions",
		Classification: Mutable,
		Fields: []Field{
			intField("id"), intField("task_id"), strField("type"), optStrField("blocks"),
			optStrField("answer"), optStrField("input_type"), optStrField("coding_language"),
			optStrField("generation_model"), optStrField("response_type"),
			optIntField("position"), tsField("created_at"), optTsField("deleted_at"),
			optIntField("max_attempts"),
			Field{Name: "is_feedback_shown", Type: TypeBoolean},
			optStrField("context"), optStrField("title"),
		},
	},
	Table{
		Name:           "course_tasks",
		Classification: Mutable,
		Fields: []Field{
			intField("id"), intField("task_id"), intField("course_id"),
			optIntField("ordering"), tsField("created_at"), optIntField("milestone_id"),
		},
	},
	Table{
		Name:           "course_milestones",
		Classification: Mutable,
		Fields: []Field{
			intField("id"), intField("course_id"), intField("milestone_id"),
			optIntField("ordering"), tsField("created_at"),
		},
	},
	Table{
		Name:           "scorecards",
		Classification: Mutable,
		Fields: []Field{
			intField("id"), intField("org_id"), strField("title"), optStrField("criteria"),
			tsField("created_at"), strField("status"),
		},
	},
	Table{
		Name:           "question_scorecards",
		Classification: InsertOnly,
		Fields: []Field{
			intField("id"), intField("question_id"), intField("scorecard_id"), tsField("created_at"),
		},
	},
	Table{
		Name:           "task_completions",
		Classification: InsertOnly,
		Fields: []Field{
			intField("id"), intField("user_id"), optIntField("task_id"),
			optIntField("question_id"), tsField("created_at"),
		},
	},
	Table{
		Name:           "chat_history",
		Classification: InsertOnly,
		Fields: []Field{
			intField("id"), intField("user_id"), intField("question_id"), strField("role"),
			optStrField("content"), optStrField("response_type"), tsField("created_at"),
		},
	},
)

// Default returns the built-in registry for the platform's tables.
func Default() *Registry { return defaultRegistry }
