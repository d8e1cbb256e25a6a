package locale

import (
	"golang.org/x/text/language"

	"github.com/katachat/katareport/internal/metrics"
)

const noteStyle = `background-color:#e6f7ff; color:#00529B; padding:15px; border-left:4px solid #00529B; margin:20px 0;`

// ZhChild is the Chinese learning-profile report for children.
func ZhChild() *Set {
	return &Set{
		ID:           "zh-child",
		Language:     language.SimplifiedChinese,
		LanguageName: "Simplified Chinese",

		Subject:         "🎓 孩子学习分析报告 | KataChat AI",
		Title:           "孩子学习分析报告",
		AnalysisHeading: "🧠 分析结果",
		ChartsHeading:   "📊 数据图表",
		Identity: IdentityLabels{
			Name:        "英文姓名",
			ChineseName: "中文姓名",
			Gender:      "性别",
			Country:     "国家",
			Birthdate:   "出生日期",
			Phone:       "电话",
			Email:       "邮箱",
			Referrer:    "推荐人",
		},

		GenderLabels:   map[string]string{"男": "男孩", "女": "女孩"},
		GenderFallback: "孩子",

		Groups: []metrics.GroupSpec{
			{Title: "学习类型倾向", Labels: []metrics.LabelSpec{
				{Name: "视觉型", Min: 50, Max: 80},
				{Name: "听觉型", Min: 20, Max: 50},
				{Name: "动手型", Min: 20, Max: 40},
			}},
			{Title: "学习投入模式", Labels: []metrics.LabelSpec{
				{Name: "每日复习", Min: 40, Max: 70},
				{Name: "独立学习", Min: 30, Max: 60},
				{Name: "小组学习", Min: 20, Max: 50},
			}},
			{Title: "学科信心与专注力", Labels: []metrics.LabelSpec{
				{Name: "数学信心", Min: 40, Max: 90},
				{Name: "阅读信心", Min: 40, Max: 80},
				{Name: "专注力", Min: 30, Max: 70},
			}},
		},
		GroupTemplates: []string{
			`在{{.Country}}，许多大约 {{.Age}} 岁的{{.Gender}}正逐步建立属于他们的学习节奏。数据显示，有 {{index .V 0}}% 的孩子偏好视觉型学习，说明图像、色彩与结构化内容能帮助他们更好地掌握知识；听觉型为 {{index .V 1}}%，动手型为 {{index .V 2}}%。这些偏好反映出他们在理解世界时所依赖的感官路径日趋多样。`,
			`在学习投入方面，有 {{index .V 0}}% 的孩子养成了每日复习的习惯，是学习自律的良好信号。{{index .V 1}}% 喜欢独立学习，展现出他们对自我节奏的掌控；而仅有 {{index .V 2}}% 倾向小组学习，这或许说明他们在协作中仍需建立更多信心。`,
			`从学科自信来看，数学得分为 {{index .V 0}}%，代表他们在逻辑推理方面有一定优势；阅读信心为 {{index .V 1}}%，提示词汇积累和语言理解尚有进步空间；专注力得分为 {{index .V 2}}%，提醒家长优化学习环境与日常节奏，以提升持续注意力。`,
		},
		ClosingTemplate: `整体来看，这些趋势勾勒出{{.Gender}}当前的成长轨迹。父母若能结合他们的偏好与节奏，提供一个视觉友好、情绪被理解、节奏被尊重的环境，将有助于他们在探索中建立自信，迈向更成熟的成长阶段。`,

		Footer: `<p style="` + noteStyle + `">
<strong>本报告中的洞察由 KataChat 的 AI 系统生成，依据以下来源分析：</strong><br>
1. 我们专属数据库中经家长同意收集的新马台儿童学习模式匿名数据<br>
2. 来自 OpenAI 等可信来源的教育趋势汇总（不包含个人信息）<br>
<em>所有数据在严格遵守 PDPA 的前提下，通过 AI 模型识别统计显著趋势。</em>
</p>
<p style="` + noteStyle + `">
<strong>PS：</strong>您也将收到完整图表的邮件版本（请查收垃圾邮件箱）。如需进一步探讨结果，可 Telegram 联系我们或预约 15 分钟通话。
</p>`,
	}
}

var englishIdentity = IdentityLabels{
	Name:        "Name",
	ChineseName: "Chinese Name",
	Gender:      "Gender",
	Country:     "Country",
	Birthdate:   "Date of Birth",
	Phone:       "Phone",
	Email:       "Email",
	Referrer:    "Referrer",
}

// EnChild is the English learning-profile report for children. It samples
// the same ranges as ZhChild.
func EnChild() *Set {
	zh := ZhChild()
	titles := []string{"Learning Style Preferences", "Study Engagement", "Subject Confidence and Focus"}
	labels := [][]string{
		{"Visual", "Auditory", "Kinesthetic"},
		{"Daily Review", "Independent Study", "Group Study"},
		{"Math Confidence", "Reading Confidence", "Focus"},
	}
	groups := make([]metrics.GroupSpec, len(zh.Groups))
	for i, g := range zh.Groups {
		groups[i] = metrics.GroupSpec{Title: titles[i]}
		for j, l := range g.Labels {
			groups[i].Labels = append(groups[i].Labels, metrics.LabelSpec{Name: labels[i][j], Min: l.Min, Max: l.Max})
		}
	}

	return &Set{
		ID:           "en-child",
		Language:     language.English,
		LanguageName: "English",

		Subject:         "🎓 Child Learning Profile Report | KataChat AI",
		Title:           "Child Learning Profile Report",
		AnalysisHeading: "🧠 Analysis",
		ChartsHeading:   "📊 Charts",
		Identity:        englishIdentity,

		GenderLabels: map[string]string{
			"male": "boys", "m": "boys", "boy": "boys", "男": "boys",
			"female": "girls", "f": "girls", "girl": "girls", "女": "girls",
		},
		GenderFallback: "children",

		Groups: groups,
		GroupTemplates: []string{
			`In {{.Country}}, many {{.Gender}} around age {{.Age}} are settling into their own learning rhythm. {{index .V 0}}% lean towards visual learning, so images, colour and structured material help them absorb new ideas; {{index .V 1}}% are auditory learners and {{index .V 2}}% learn best by doing.`,
			`On study habits, {{index .V 0}}% review their lessons every day, a good sign of self-discipline. {{index .V 1}}% prefer studying on their own, while only {{index .V 2}}% enjoy group study, which suggests collaboration is a confidence they are still building.`,
			`Looking at subject confidence, math scores {{index .V 0}}%, showing a strength in logical reasoning. Reading confidence sits at {{index .V 1}}%, leaving room to grow vocabulary and comprehension, and focus scores {{index .V 2}}%, a reminder to keep study time calm and consistent.`,
		},
		ClosingTemplate: `Taken together, these trends sketch where {{.Gender}} at this stage are heading. Parents who work with their preferences and pace, offering a visual-friendly space where feelings are understood and rhythm is respected, help them build confidence as they grow.`,

		Footer: `<p style="` + noteStyle + `">
<strong>The insights in this report were generated by KataChat's AI system from:</strong><br>
1. Anonymised learning-pattern data from children in Singapore, Malaysia and Taiwan, collected with parental consent<br>
2. Aggregated education trends from trusted sources such as OpenAI (no personal information)<br>
<em>All data is processed in line with the PDPA; AI models are used only to identify statistically significant trends.</em>
</p>
<p style="` + noteStyle + `">
<strong>PS:</strong> A full version with charts is on its way to your inbox (check the spam folder). To talk through the results, reach us on Telegram or book a 15-minute call.
</p>`,
	}
}

// EnEmployee is the workplace performance report served by /boss_analyze.
func EnEmployee() *Set {
	return &Set{
		ID:           "en-employee",
		Language:     language.English,
		LanguageName: "English",

		Subject:         "📈 Team Member Performance Report | KataChat AI",
		Title:           "Team Member Performance Report",
		AnalysisHeading: "🧠 Analysis",
		ChartsHeading:   "📊 Charts",
		Identity:        englishIdentity,

		GenderLabels: map[string]string{
			"male": "male professionals", "m": "male professionals", "男": "male professionals",
			"female": "female professionals", "f": "female professionals", "女": "female professionals",
		},
		GenderFallback: "team members",

		Groups: []metrics.GroupSpec{
			{Title: "Communication Style", Labels: []metrics.LabelSpec{
				{Name: "Direct", Min: 40, Max: 80},
				{Name: "Collaborative", Min: 30, Max: 70},
				{Name: "Analytical", Min: 20, Max: 60},
			}},
			{Title: "Work Engagement", Labels: []metrics.LabelSpec{
				{Name: "Ownership", Min: 40, Max: 80},
				{Name: "Initiative", Min: 30, Max: 70},
				{Name: "Teamwork", Min: 30, Max: 60},
			}},
			{Title: "Execution and Growth", Labels: []metrics.LabelSpec{
				{Name: "Delivery", Min: 50, Max: 90},
				{Name: "Learning Agility", Min: 40, Max: 80},
				{Name: "Stress Resilience", Min: 30, Max: 70},
			}},
		},
		GroupTemplates: []string{
			`In {{.Country}}, {{.Gender}} around age {{.Age}} show a distinctive communication profile. {{index .V 0}}% communicate directly and get to the point, {{index .V 1}}% favour a collaborative tone, and {{index .V 2}}% lead with analysis and data.`,
			`On engagement, {{index .V 0}}% take clear ownership of their work and {{index .V 1}}% regularly show initiative beyond their brief. Teamwork scores {{index .V 2}}%, pointing to room for stronger cross-team habits.`,
			`For execution, delivery reliability stands at {{index .V 0}}% and learning agility at {{index .V 1}}%. Stress resilience scores {{index .V 2}}%, a cue for managers to watch workload and pacing during busy periods.`,
		},
		ClosingTemplate: `Overall, these trends describe where {{.Gender}} at this career stage are heading. Managers who match assignments to their strengths, give clear feedback and respect their working rhythm will see that potential turn into consistent performance.`,

		Footer: `<p style="` + noteStyle + `">
<strong>The insights in this report were generated by KataChat's AI system</strong> from anonymised workplace trend data and aggregated industry research (no personal information).<br>
<em>All data is processed in line with the PDPA.</em>
</p>`,
	}
}
