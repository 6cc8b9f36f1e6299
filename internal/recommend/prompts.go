package recommend

import (
	"fmt"
	"strings"
)

// extractionPrompt builds the instruction template for the extract stage.
func extractionPrompt(query string) string {
	return fmt.Sprintf(extractionTemplate, query)
}

const extractionTemplate = `You are an expert job request analyzer specializing in understanding what services users need from contractors and vendors.

Your task: Extract structured information from the user's job request to enable accurate vendor matching.

## Instructions

Analyze the user's request and extract:
1. **job_type**: The main category of work (e.g., "construction", "plumbing", "catering", "IT services")
2. **services_needed**: Specific services required (list of strings)
3. **location**: Any mentioned location or "null" if not specified
4. **urgency**: "urgent", "normal", or "flexible" based on language cues
5. **additional_context**: Any other relevant details
6. **optimized_query**: A clean, keyword-rich query optimized for semantic search

## Optimized Query Rules (very important)
- Use only concepts explicitly present in the user request (or your extracted location below); do NOT invent locations, venues, or contexts.
- If a location is mentioned, include it once; otherwise omit location.
- Keep it concise: 4-12 keywords, no full sentences.
- Focus on service/industry terms, not brand/company names, and do not include user urgency words.

## Examples

**Example 1:**
User: "I need to dig a hole behind the pub I have, which vendors can do this for me?"

Output:
job_type: construction
services_needed: excavation, groundwork, digging, earthworks
location: null
urgency: normal
additional_context: Work is for a pub property, outdoor/behind building
optimized_query: excavation groundwork digging earthworks construction contractor

**Example 2:**
User: "Emergency! Water pipe burst in my restaurant kitchen in Leeds, need someone NOW"

Output:
job_type: plumbing
services_needed: emergency plumbing, pipe repair, water damage, commercial plumbing
location: Leeds
urgency: urgent
additional_context: Commercial kitchen environment, water pipe burst
optimized_query: emergency plumbing pipe repair commercial kitchen restaurant water

**Example 3:**
User: "Looking for someone to install fire sprinklers in our new office building"

Output:
job_type: fire protection
services_needed: fire sprinkler installation, fire suppression systems, fire safety
location: null
urgency: normal
additional_context: New office building, commercial installation
optimized_query: fire sprinkler installation fire protection fire suppression commercial building

## Now analyze this request:

User: "%s"

Return your response as valid JSON with this exact structure:
{
  "job_type": "string",
  "services_needed": ["list", "of", "services"],
  "location": "string or null",
  "urgency": "urgent|normal|flexible",
  "additional_context": "string or null",
  "optimized_query": "keyword rich search query"
}

Return ONLY the JSON. No additional text.`

// rerankingPrompt builds the instruction template for the rerank stage.
// The user's original, unreformulated query goes here: the optimized query is
// tuned for embedding recall, not for justifying a ranking.
func rerankingPrompt(originalQuery, candidates string, topK int) string {
	return fmt.Sprintf(rerankingTemplate, originalQuery, candidates, topK, topK, topK)
}

const rerankingTemplate = `You are an expert vendor matching specialist with deep knowledge of contractor services and capabilities.

## Your Task

The user has submitted a job request. You have been given a list of potential vendor candidates retrieved from a database. Your job is to:
1. Understand exactly what the user needs
2. Evaluate each vendor's suitability
3. Rank the most relevant vendors
4. Provide clear reasoning for each ranking

## User's Original Request

"%s"

## Candidate Vendors

%s

## Evaluation Instructions

Think step by step for each vendor:
- **Service Match**: Do their services directly address the user's need?
- **Industry Relevance**: Is their industry aligned with the job type?
- **Capability Evidence**: Does their description suggest they can handle this work?
- **Location Proximity**: If the user specified a location, prioritize vendors in or near that city. Vendors in the same region or nearby cities should rank higher than distant ones.

## Scoring Guidelines

- **0.9-1.0**: Perfect match - services directly address the need, located in/near user's location (if specified)
- **0.7-0.8**: Strong match - clearly relevant services/industry, reasonably close location
- **0.5-0.6**: Partial match - some relevant capabilities, or good service match but distant location
- **0.3-0.4**: Weak match - tangentially related or very far from user's location
- **0.0-0.2**: Poor match - not relevant to the request

## Output Format

Return a JSON object with your analysis and rankings. IMPORTANT: Use the candidate_id (shown as "Candidate ID:" for each candidate) to identify vendors - do NOT rely on company names as they may be normalized differently.

{
  "user_need_analysis": "Brief description of what the user actually needs",
  "required_service_types": ["list", "of", "service", "types"],
  "rankings": [
    {
      "rank": 1,
      "candidate_id": "0",
      "relevance_score": 0.95,
      "reasoning": "Step-by-step reasoning referencing actual vendor details."
    }
  ]
}

## Important Notes

- Return ONLY the top %d most relevant vendors
- If fewer than %d are relevant (score > 0.3), return only those that are relevant
- Your reasoning should be specific and reference actual vendor details
- Be honest - if no vendors are good matches, say so in your analysis

Now analyze the candidates and provide your top %d rankings. Return ONLY valid JSON.`

// formatCandidates renders each candidate into a fixed-format block labeled
// with its candidate id. Absent fields are omitted rather than emitted empty.
func formatCandidates(candidates []Candidate) string {
	blocks := make([]string, 0, len(candidates))

	for _, c := range candidates {
		var sb strings.Builder
		fmt.Fprintf(&sb, "### Candidate ID: %s - %s\n", c.CandidateID, c.CompanyName)

		appendField := func(label, value string) {
			if value != "" {
				fmt.Fprintf(&sb, "- %s: %s\n", label, value)
			}
		}

		appendField("Also known as", c.TradingName)
		appendField("Services", c.Services)
		appendField("Products", c.Products)
		appendField("Industry", c.Industry)
		appendField("About", c.About)
		appendField("Location", c.City)
		appendField("Address", c.Address)
		appendField("Certifications", c.Certifications)
		appendField("Phone", c.Phone)
		appendField("Email", c.Email)
		appendField("Website", c.Website)
		appendField("Employees", c.Employees)

		fmt.Fprintf(&sb, "- Similarity score: %.4f", c.SimilarityScore)

		blocks = append(blocks, sb.String())
	}

	return strings.Join(blocks, "\n\n")
}
