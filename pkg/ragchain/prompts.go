package ragchain

const symptomAnalysisTemplate = `Based on the following medical knowledge, provide helpful information about the user's symptoms.

CONTEXT FROM MEDICAL KNOWLEDGE BASE:
{context}

USER'S SYMPTOMS:
{query}

Please provide:
1. What the symptoms might indicate (based on the context)
2. Severity assessment
3. Self-care recommendations
4. When to seek medical attention
5. Any emergency warning signs

Be empathetic, clear, and helpful. Remember to emphasize seeing a doctor if symptoms are concerning.`

const diseaseInfoTemplate = `Based on the following medical knowledge, provide comprehensive information about the condition.

CONTEXT FROM MEDICAL KNOWLEDGE BASE:
{context}

USER'S QUESTION:
{query}

Please provide:
1. Overview of the condition
2. Common symptoms
3. Causes and risk factors
4. Treatment options
5. Prevention tips
6. When to see a doctor

Be clear, informative, and supportive.`

const generalMedicalTemplate = `Based on the following medical knowledge, answer the user's question.

CONTEXT FROM MEDICAL KNOWLEDGE BASE:
{context}

USER'S QUESTION:
{query}

Provide a clear, accurate, and helpful answer based on the context. If the context doesn't contain enough information, acknowledge this and provide general guidance.`
