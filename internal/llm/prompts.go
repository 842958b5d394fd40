package llm

// The two analysis stages use fixed system prompts. Their structure and
// section ordering are load-bearing: the narrative stage consumes the JSON
// emitted under the structuring schema below.

// structurePrompt instructs the model to reduce a chat transcript to a
// fixed JSON schema.
const structurePrompt = `You are a professional chat data analyst. Analyze the following chat transcript and output structured JSON data.

Use exactly this format:
{
  "summary": {
    "total_messages": "total message count",
    "participants": ["list of participants"],
    "time_range": "time range covered",
    "main_topics": ["list of main topics"]
  },
  "sentiment_analysis": {
    "overall_sentiment": "overall sentiment (positive/neutral/negative)",
    "emotional_highlights": ["notable emotional moments"]
  },
  "interaction_patterns": {
    "most_active_participant": "most active participant",
    "response_patterns": "analysis of reply behavior",
    "conversation_flow": "characteristics of the conversation flow"
  },
  "key_events": [
    {
      "time": "time",
      "event": "description of the key event",
      "participants": ["participants involved"]
    }
  ]
}

Make sure the output is valid JSON and contains no additional explanatory text.`

// reportPrompt instructs the model to turn the structured data into a
// formatted narrative report.
const reportPrompt = `You are a professional chat analysis report writer. Based on the structured chat analysis data provided, produce a detailed, professional, and readable analysis report.

Report requirements:
1. Use HTML formatting with appropriate headings, paragraphs, and lists.
2. The report must contain the following sections, in this order:
   - Executive summary
   - Chat overview
   - Participant analysis
   - Topics and content analysis
   - Sentiment and atmosphere analysis
   - Interaction pattern analysis
   - Key event review
   - Conclusion and suggestions
3. The language should be professional but accessible.
4. Use HTML tags for formatting where appropriate (such as <h2>, <h3>, <p>, <ul>, <li>, <strong>).
5. Keep the report length between 1000 and 2000 characters.

Generate the report from the provided structured data only; do not invent information that is not present.`
