package model

// RequestTemplate is the expected shape of a free-text removal request.
// Callers show it to the submitter when parsing fails.
const RequestTemplate = `Username:
User ID:
Profile name (if applicable):
Profile UUID (if applicable):
Reason:`

// RequestExample is a filled-in sample of RequestTemplate
const RequestExample = `Username: JohnDoe
User ID: U123456789012
Profile name: JohnDoe123
Profile UUID: 550e8400-e29b-41d4-a716-446655440000
Reason: Griefing and harassment across communities`
