package mcp

import "github.com/mark3labs/mcp-go/mcp"

var askNavigatorTool = mcp.NewTool("ask_navigator",
	mcp.WithDescription("Ask how to obtain a Kerala government service or what to do after a life event. Answers come from the curated catalog when possible."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The citizen's question, in English or Malayalam"),
	),
	mcp.WithString("language",
		mcp.Description("Reply language (default en)"),
		mcp.Enum("en", "ml"),
	),
)

var getServiceTool = mcp.NewTool("get_service",
	mcp.WithDescription("Get the formatted guide for one catalog service: steps, documents, fee and where to apply."),
	mcp.WithString("service_id",
		mcp.Required(),
		mcp.Description("Catalog service id, for example aadhaar_address_update"),
	),
	mcp.WithString("language",
		mcp.Description("Reply language (default en)"),
		mcp.Enum("en", "ml"),
	),
)

var listServicesTool = mcp.NewTool("list_services",
	mcp.WithDescription("List the ids and names of every service in the catalog."),
	mcp.WithString("language",
		mcp.Description("Language for service names (default en)"),
		mcp.Enum("en", "ml"),
	),
)

var listLifeEventsTool = mcp.NewTool("list_life_events",
	mcp.WithDescription("List the supported life events with their checklist length."),
	mcp.WithString("language",
		mcp.Description("Language for event names (default en)"),
		mcp.Enum("en", "ml"),
	),
)
