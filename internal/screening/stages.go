package screening

import "slices"

func q(id string, d Domain, text string) Question {
	return Question{ID: id, Domain: d, Text: text}
}

var catalog = []Stage{
	{ID: "S1", Label: "4 ~ 6개월", MinMonths: 4, MaxMonths: 6, Questions: []Question{
		q("4-6_GM_1", DomainGrossMotor, "엎드려 놓으면 팔로 지지하여 머리와 가슴을 들어 올립니까?"),
		q("4-6_GM_2", DomainGrossMotor, "바로 누운 자세에서 양손을 잡고 당기면 머리를 따라 올라옵니까?"),
		q("4-6_FM_1", DomainFineMotor, "손에 닿는 물건을 잡으려고 손을 뻗습니까?"),
		q("4-6_CG_1", DomainCognition, "움직이는 물체를 따라 시선을 180도 정도 움직입니까?"),
		q("4-6_LG_1", DomainLanguage, "기분이 좋으면 옹알이를 합니까? (예: 아아, 우우 등)"),
		q("4-6_SC_1", DomainSocial, "얼르는 소리를 내면 웃습니까?"),
	}},
	{ID: "S2", Label: "9 ~ 12개월", MinMonths: 9, MaxMonths: 12, Questions: []Question{
		q("9-12_GM_1", DomainGrossMotor, "물건을 잡고 일어섭니까?"),
		q("9-12_GM_2", DomainGrossMotor, "혼자서 앉은 자세를 유지하며 장난감을 가지고 놉니까?"),
		q("9-12_FM_1", DomainFineMotor, "엄지와 검지를 사용하여 작은 물건(건포도 등)을 집을 수 있습니까?"),
		q("9-12_CG_1", DomainCognition, "찾으려는 물건을 덮어 감추면 덮개를 들추고 찾습니까?"),
		q("9-12_LG_1", DomainLanguage, "\"안 돼\"라고 말하면 하던 행동을 잠시 멈춥니까?"),
		q("9-12_LG_2", DomainLanguage, "\"엄마\", \"아빠\" 외에 할 수 있는 단어가 한두 개 있습니까?"),
		q("9-12_SC_1", DomainSocial, "낯선 사람을 보면 불안해하거나 웁니까?"),
		q("9-12_SH_1", DomainSelfHelp, "혼자서 컵을 잡고 물을 마십니까?"),
	}},
	{ID: "S3", Label: "18 ~ 24개월", MinMonths: 18, MaxMonths: 24, Questions: []Question{
		q("18-24_GM_1", DomainGrossMotor, "난간을 잡지 않고 계단을 오르내릴 수 있습니까?"),
		q("18-24_GM_2", DomainGrossMotor, "제자리에서 공을 찰 수 있습니까?"),
		q("18-24_FM_1", DomainFineMotor, "블록을 3~4개 정도 쌓을 수 있습니까?"),
		q("18-24_CG_1", DomainCognition, "간단한 심부름을 수행합니까? (예: 기저귀 가져와)"),
		q("18-24_LG_1", DomainLanguage, "두 단어를 연결하여 말합니까? (예: 엄마 물, 이거 뭐야)"),
		q("18-24_SC_1", DomainSocial, "다른 아이들과 함께 있는 것을 좋아합니까?"),
		q("18-24_SH_1", DomainSelfHelp, "수저를 사용하여 밥을 먹으려 노력합니까?"),
	}},
	{ID: "S4", Label: "30 ~ 36개월", MinMonths: 30, MaxMonths: 36, Questions: []Question{
		q("30-36_GM_1", DomainGrossMotor, "한 발로 1~2초간 서 있을 수 있습니까?"),
		q("30-36_FM_1", DomainFineMotor, "단추를 끼우거나 뺄 수 있습니까?"),
		q("30-36_FM_2", DomainFineMotor, "원을 보고 비슷하게 그릴 수 있습니까?"),
		q("30-36_CG_1", DomainCognition, "크다/작다의 개념을 이해합니까?"),
		q("30-36_LG_1", DomainLanguage, "자신의 이름을 말할 수 있습니까?"),
		q("30-36_SC_1", DomainSocial, "친구와 장난감을 나누어 쓰거나 순서를 지킬 수 있습니까?"),
		q("30-36_SH_1", DomainSelfHelp, "혼자서 바지를 내리고 입을 수 있습니까?"),
	}},
	{ID: "S5", Label: "42 ~ 48개월", MinMonths: 42, MaxMonths: 48, Questions: []Question{
		q("42-48_GM_1", DomainGrossMotor, "한 발로 깡충깡충 뛸 수 있습니까?"),
		q("42-48_FM_1", DomainFineMotor, "가위로 선을 따라 종이를 오릴 수 있습니까?"),
		q("42-48_LG_1", DomainLanguage, "과거나 미래의 일을 문장으로 표현합니까?"),
		q("42-48_SC_1", DomainSocial, "규칙이 있는 간단한 게임을 할 수 있습니까?"),
	}},
	{ID: "S6", Label: "54 ~ 60개월", MinMonths: 54, MaxMonths: 60, Questions: []Question{
		q("54-60_GM_1", DomainGrossMotor, "그네를 혼자서 탈 수 있습니까?"),
		q("54-60_FM_1", DomainFineMotor, "삼각형을 보고 따라 그릴 수 있습니까?"),
		q("54-60_CG_1", DomainCognition, "숫자를 10까지 셀 수 있습니까?"),
		q("54-60_LG_1", DomainLanguage, "끝말잇기를 할 수 있습니까?"),
	}},
}

// Stages returns the stage catalog in ascending age order.
func Stages() []Stage {
	return slices.Clone(catalog)
}

func StageByID(id string) (Stage, error) {
	for _, s := range catalog {
		if s.ID == id {
			return s, nil
		}
	}
	return Stage{}, ErrStageNotFound
}

// MatchStage returns the stage whose band contains the age.
func MatchStage(months int) (Stage, bool) {
	for _, s := range catalog {
		if s.Contains(months) {
			return s, true
		}
	}
	return Stage{}, false
}

// NearestStage returns the stage closest to the age, preferring the earlier
// stage on ties.
func NearestStage(months int) Stage {
	best := catalog[0]
	for _, s := range catalog[1:] {
		if s.distance(months) < best.distance(months) {
			best = s
		}
	}
	return best
}

// Overview describes which stage a child should take now.
type Overview struct {
	AgeMonths int     `json:"age_months"`
	Stage     Stage   `json:"stage"`
	Matched   bool    `json:"matched"`
	Completed bool    `json:"completed"`
	Next      *Stage  `json:"next,omitempty"`
	Result    *Result `json:"result,omitempty"`
}

// StageOverview picks the matching stage, or the nearest one when the age
// falls between bands, and reports whether it already has a result.
func StageOverview(months int, results map[string]Result) Overview {
	stage, matched := MatchStage(months)
	if !matched {
		stage = NearestStage(months)
	}

	ov := Overview{AgeMonths: months, Stage: stage, Matched: matched}
	if r, ok := results[stage.ID]; ok {
		ov.Completed = true
		ov.Result = &r
	}

	idx := slices.IndexFunc(catalog, func(s Stage) bool { return s.ID == stage.ID })
	if idx >= 0 && idx < len(catalog)-1 {
		next := catalog[idx+1]
		ov.Next = &next
	}
	return ov
}
