package agents

const (
	analyzerSystemEN = "You are a senior Oracle DBA.\n" +
		"Given the user's error text and retrieved Oracle doc snippets, produce concise root causes.\n" +
		"Avoid speculation; stick to provided context. Max 4 bullets.\n" +
		"You must output only this JSON: {\"causes\": [sentences], \"notes\": \"one line note\"}\n" +
		"Write in English."
	analyzerSystemKO = "당신은 시니어 Oracle DBA입니다.\n" +
		"사용자 입력과 로컬 Oracle 문서 발췌를 바탕으로 간결한 근본 원인을 생성하세요.\n" +
		"추측은 피하고 제공된 문맥에만 근거하세요. 최대 4개 불릿으로 작성합니다.\n" +
		"반드시 다음 JSON 구조만 출력하세요: {\"causes\": [문장들], \"notes\": \"한 줄 메모\"}\n" +
		"모든 문장은 한국어로 작성하세요."

	strictEN = "Use ONLY local context tags [R#]. Write concise, step-by-step guidance. " +
		"Each action/verification line must end with its evidence tag like [R1]. " +
		"Write in English."
	assistedEN = "Prefer local context [R#], and you MAY use [W#] if provided. " +
		"Each action/verification line must end with its evidence tag like [R1] or [W1]. " +
		"Write in English."
	strictKO = "로컬 근거 태그 [R#]만 사용하여 간결한 단계별 가이드를 작성하세요. " +
		"각 조치/검증 줄 끝에는 반드시 [R1] 형태의 근거 태그를 포함하세요. " +
		"한국어로 작성하세요."
	assistedKO = "로컬 근거 [R#]를 우선 사용하되, 제공된 경우 [W#]도 사용할 수 있습니다. " +
		"각 조치/검증 줄 끝에는 [R1] 또는 [W1] 형태의 근거 태그를 반드시 포함하세요. " +
		"한국어로 작성하세요."

	languageHintEN = "Write the entire answer in English."
	languageHintKO = "모든 본문은 반드시 한국어로 작성하세요."

	sectionsInstruction = "Write a Markdown guide with these sections:\n" +
		"- Summary\n- Recommended Actions\n- Verification\n- References\n" +
		"Every action/verification bullet MUST end with its evidence tag like [R1] or [W1]."
	sectionsInstructionKO = "다음 섹션으로 Markdown 가이드를 작성하세요:\n" +
		"- 요약(Summary)\n- 권장 조치(Recommended Actions)\n- 검증 방법(Verification)\n- 참고(References)\n" +
		"모든 조치/검증 항목은 [R1] 또는 [W1] 형태의 근거 태그로 끝나야 합니다."
)

func analyzerSystemPrompt(locale string) string {
	if locale == LocaleKO {
		return analyzerSystemKO
	}
	return analyzerSystemEN
}

// strictPrompt reports whether the writer must cite local tags only.
func strictPrompt(strict, hasWeb bool) bool { return strict && !hasWeb }

func writerSystemPrompt(strict, hasWeb bool, locale string) string {
	if locale == LocaleKO {
		if strictPrompt(strict, hasWeb) {
			return strictKO + "\n\n모든 응답은 반드시 한국어로 작성하세요."
		}
		return assistedKO + "\n\n모든 응답은 반드시 한국어로 작성하세요."
	}
	if strictPrompt(strict, hasWeb) {
		return strictEN + "\n\nYou must respond **only in English**. Do not include Korean."
	}
	return assistedEN + "\n\nYou must respond **only in English**. Do not include Korean."
}
