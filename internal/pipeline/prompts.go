package pipeline

// Prompt templates for the classification, generation, validation and
// correction calls. These are the single source of truth; no other package
// builds LLM prompts.

const icpSystemPrompt = `Role: B2B Lead Qualification Filter.

Objective: Categorize LinkedIn profiles based on Authority and Industry fit for a Sales Automation and Personal Branding agency.

Rules for Authority (Strict):
- Qualify: CEOs, Founders, Co-Founders, Managing Directors, Owners, Partners, VPs, and C-Suite executives.
- Reject: Interns, Students, Junior staff, Administrative assistants, and low-level individual contributors.

Rules for B2B Industry (Lenient):
- Qualify: High-ticket service industries (Agencies, SaaS, Consulting, Coaching, Tech).

The "Benefit of Doubt" Rule: If you are unsure if a business is B2B or B2C, or unsure if the person is a top-level decision-maker, Qualify them (Set to true). Only reject if they are clearly non-decision makers or in non-business roles.

Hard Rejections:
- Leads from massive traditional Banking/Financial institutions (e.g., Santander, Getnet).
- Physical labor or local retail roles (e.g., Driver, Technician, Cashier).

You are an expert at evaluating sales leads. Always respond with valid JSON.`

const icpUserPrompt = `Evaluate this LinkedIn profile:

%s

Respond in JSON format:
{
  "match": true/false,
  "confidence": "high" | "medium" | "low",
  "reason": "Brief explanation (1 sentence)"
}`

const icpCriteriaSystemPrompt = `You are an expert at evaluating sales leads against ICP criteria. Always respond with valid JSON.`

const icpCriteriaUserPrompt = `You are verifying if a LinkedIn lead matches the Ideal Customer Profile (ICP).

ICP Criteria: %s

Lead Information:
%s

Task: Determine if this lead matches the ICP.

Respond in JSON format:
{
  "match": true/false,
  "confidence": "high" | "medium" | "low",
  "reason": "Brief explanation (1 sentence)"
}`

const generateSystemPrompt = `You are an expert at creating personalized LinkedIn DMs following strict template rules.`

const generateUserPrompt = `You create **5-line LinkedIn DMs** that feel personal and conversational - balancing business relevance with personal connection and strict template wording.

## TASK
Generate 5 lines:
1. **Greeting** -> Hey [FirstName]
2. **Profile hook** -> [CompanyName] looks interesting
3. **Business related Inquiry** -> You guys do [service] right? Do that w [method]? Or what
4. **Authority building Hook** -> 2-line authority statement based on industry (see rules below)
5. **Location Hook** -> See you're in [city/region]. Just been to Fort Lauderdale in the US - and I mean the airport lol Have so many connections now that I need to visit for real. I'm in Glasgow, Scotland

# PROFILE HOOK TEMPLATE (LINE 2)

Template: [CompanyName] looks interesting

Rules:
- Use their current company name (not past companies)
- Always "looks interesting" (not "sounds interesting" or other variations)
- No exclamation marks
- Unless their company name is one word shorten it (remove commas, LTD, Inc, Corp, etc)

Examples:
- "Immersion Data Solutions, LTD" -> "IDS looks interesting"
- "Coca Cola LTD" -> "Coca Cola looks interesting"

# BUSINESS INQUIRY TEMPLATE (LINE 3)

Template: You guys do [service] right? Do that w [method]? Or what

Rules:
- Infer [service] from their headline and company description (NOT just title/company name)
- Infer [method] based on common methods for that service
- Keep it casual and conversational, use "w" instead of "with"

Examples:
- You guys do paid ads right? Do that w Google + Meta? Or what
- You guys do outbound right? Do that w LinkedIn + email? Or what
- You guys do executive search right? Do that w retained + contingency? Or what

# AUTHORITY STATEMENT (LINE 4 - EXACTLY 2 LINES)

Line 1: a simple, universally true industry insight ("Outbound is a tough nut to crack.", "Podcasting is powerful.").
Line 2: connects directly to business outcomes (revenue, scaling, margins, clients).

Non-negotiable rules:
1. The result must always be EXACTLY 2 lines.
2. No fluff. Forbidden phrasings: "helps businesses...", "keeps things running smoothly...", "boosts adoption fast...", "improves efficiency...", "keeps listeners engaged...", "help manage leads efficiently...".
3. No repeating the same idea twice.
4. Every term must be used accurately (CRM, analytics, attribution, CAC, outbound, compliance).
5. "Underrated" may only be used when the thing is ACTUALLY underrated. Cybersecurity, VAs, branding, and CRM are NOT underrated.
6. The final line must connect to money / revenue / scaling / clients.
7. Founder voice: short, direct, conversational.
8. Everything must be TRUE.

Exemplars (reference for tone and structure):
"Outbound is a tough nut to crack
Really comes down to precise targeting/personalisation to book clients at a high level."
"Podcasting is powerful
Great way to build trust at scale with your ideal audience."
"A streamlined CRM is so valuable
Without proper tracking you're leaving revenue on the table."

# LOCATION HOOK TEMPLATE (LINE 5)

Word-for-word, only replace [city/region]:
See you're in [city/region]. Just been to Fort Lauderdale in the US - and I mean the airport lol Have so many connections now that I need to visit for real. I'm in Glasgow, Scotland

# TEMPLATE INTEGRITY LAW

Templates must be word-for-word. Only [placeholders] may be swapped. No rephrasing.

# OUTPUT FORMAT

Output the 5 lines with a blank line between each, no section labels, no long dashes. Return ONLY the message.

Lead Information:
- First Name: %s
- Company: %s
- Title: %s
- Headline: %s
- Company Description: %s
- Location: %s

Generate the complete 5-line LinkedIn DM now. Return ONLY the message (no explanation, no labels, no formatting).`

const validateUserPrompt = `You are a strict accuracy validator for LinkedIn outreach messages.

Given the INPUT DATA (what we know about this person) and the GENERATED MESSAGE (what we sent them), score the accuracy.

INPUT DATA:
- Full Name: %s
- Headline: %s
- Job Title: %s
- Job Description: %s
- Company: %s
- Company Description: %s
- Company Industry: %s
- Summary: %s

GENERATED MESSAGE:
%s

MESSAGE STRUCTURE (5 parts):
1. Greeting: "Hey [Name]"
2. Company hook: "[Company] looks interesting"
3. Service question: "You guys do [service] right? Do that w [method]? Or what"
4. Authority statement: TWO lines about their industry
5. Location hook: Casual paragraph about location - IGNORE THIS for scoring (it's intentionally conversational)

SCORE EACH (1-5 scale, where 1=completely wrong, 3=partially accurate, 5=spot on):

1. **Service Accuracy**: Does the "[service]" in part 3 accurately reflect what the company actually does?
2. **Method Accuracy**: Is the "[method]" in part 3 realistic for that service type?
3. **Authority Statement Relevance**: Does the 2-line authority statement (part 4, NOT the location hook) apply to their industry?

Return ONLY valid JSON (no markdown, no explanation):
{"service_score": X, "method_score": X, "authority_score": X, "avg_score": X.X, "inferred_service": "what message claims they do", "actual_service": "what they actually do based on data", "flag": "PASS|REVIEW|FAIL", "reason": "1-2 sentence explanation if REVIEW or FAIL"}

Flag rules:
- PASS: avg_score >= 4.0
- REVIEW: avg_score >= 2.5 and < 4.0
- FAIL: avg_score < 2.5`

const correctionUserPrompt = `A LinkedIn outreach message was flagged for accuracy problems. Regenerate it following the original template rules exactly.

ORIGINAL MESSAGE:
%s

VALIDATOR FEEDBACK:
- The message claims they do: %s
- What they actually do: %s
- Reason flagged: %s

LEAD DATA:
- First Name: %s
- Company: %s
- Title: %s
- Headline: %s
- Company Description: %s
- Location: %s

Fix the service/method inquiry and the authority statement so they match what this person actually does. Keep the greeting, company hook, and location hook unchanged. Output the full corrected 5-line message with a blank line between each line. Return ONLY the message.`
