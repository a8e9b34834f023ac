package llm

// JSON schemas for structured generation. Passed to providers via
// GenerationRequest.Schema; responses are parsed into the matching
// models types by the content services.

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func arraySchema(items map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":  "array",
		"items": items,
	}
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

// TopicSchema describes a single learning topic.
func TopicSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"title":        stringProp("Concise topic title"),
		"description":  stringProp("One or two sentence topic summary"),
		"news_context": stringProp("Current market or news angle that makes the topic timely"),
	}, "title", "description")
}

// TopicListSchema describes the daily topic list for a category.
func TopicListSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"topics": arraySchema(TopicSchema()),
	}, "topics")
}

// ArticleSchema describes a generated learning article.
func ArticleSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"title":   stringProp("Article title"),
		"content": stringProp("Full article body in markdown"),
		"tooltip_words": arraySchema(objectSchema(map[string]interface{}{
			"word":    stringProp("Financial term used in the article"),
			"tooltip": stringProp("Plain-language definition of the term"),
		}, "word", "tooltip")),
		"key_takeaways": arraySchema(stringProp("One key takeaway")),
	}, "title", "content", "tooltip_words", "key_takeaways")
}

// GlossarySchema describes the daily glossary payload (three terms).
func GlossarySchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"terms": arraySchema(objectSchema(map[string]interface{}{
			"term":       stringProp("Financial term"),
			"definition": stringProp("Definition matched to the reader's level"),
			"example":    stringProp("Short concrete example"),
		}, "term", "definition")),
	}, "terms")
}

// QuoteSchema describes a finance quote payload.
func QuoteSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"text":   stringProp("The quote"),
		"author": stringProp("Who said it"),
	}, "text", "author")
}

// TrendingNewsSchema describes the trending finance news list.
func TrendingNewsSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"items": arraySchema(objectSchema(map[string]interface{}{
			"title":   stringProp("Headline"),
			"summary": stringProp("Two or three sentence summary at the reader's level"),
			"topic":   stringProp("Underlying financial topic, e.g. stocks, bonds"),
			"source":  stringProp("Publication name"),
			"url":     stringProp("Link to the story if known"),
		}, "title", "summary", "topic")),
	}, "items")
}

// NewsArticleSchema describes an expanded article for a single news item.
func NewsArticleSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"title":   stringProp("Article title"),
		"content": stringProp("Educational article in markdown explaining the story"),
		"tooltip_words": arraySchema(objectSchema(map[string]interface{}{
			"word":    stringProp("Financial term used in the article"),
			"tooltip": stringProp("Plain-language definition of the term"),
		}, "word", "tooltip")),
	}, "title", "content")
}

// SimilarAssetsSchema describes similar-asset suggestions for a symbol.
func SimilarAssetsSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"assets": arraySchema(objectSchema(map[string]interface{}{
			"symbol":            stringProp("Ticker symbol"),
			"name":              stringProp("Asset name"),
			"similarity_reason": stringProp("Why this asset is comparable"),
			"comparison_points": arraySchema(stringProp("One point of comparison")),
		}, "symbol", "name", "similarity_reason")),
	}, "assets")
}

// ResearchSchema describes a narrative asset research report.
func ResearchSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"overview": stringProp("Narrative overview of the asset in markdown"),
		"key_metrics": arraySchema(objectSchema(map[string]interface{}{
			"name":  stringProp("Metric name"),
			"value": stringProp("Metric value with units"),
		}, "name", "value")),
		"risks":         arraySchema(stringProp("One risk factor")),
		"opportunities": arraySchema(stringProp("One opportunity")),
	}, "overview", "risks", "opportunities")
}

// SummarySchema describes the personalized user summary.
func SummarySchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"summary":       stringProp("Short motivational summary of recent learning activity"),
		"suggestion":    stringProp("One suggested next topic or action"),
		"encouragement": stringProp("One-line encouragement referencing the streak"),
	}, "summary", "suggestion")
}
