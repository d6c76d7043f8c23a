package category

// Defaults returns the built-in category set. A YAML file can replace it.
func Defaults() []Config {
	return []Config{
		{
			Key:         "article",
			Label:       "気になる記事",
			Icon:        "📰",
			Description: "気になる記事や資料を共有。概要を添えてスムーズに参照できるようにします。",
			MetadataFields: []MetadataField{
				{
					Key:         "summary",
					Label:       "要約",
					Type:        "textarea",
					Placeholder: "この記事の要点や気づきを簡潔にまとめましょう。",
				},
				{
					Key:   "sourceType",
					Label: "情報種別",
					Type:  "select",
					Options: []Option{
						{Label: "Blog / Note", Value: "blog"},
						{Label: "Docs / Spec", Value: "document"},
						{Label: "Video / Talk", Value: "video"},
						{Label: "その他", Value: "other"},
					},
					DefaultValue: "blog",
				},
			},
			DefaultStatus: "open",
		},
		{
			Key:         "question",
			Label:       "相談・質問",
			Icon:        "❓",
			Description: "課題感や期限を明記してチームに相談します。",
			MetadataFields: []MetadataField{
				{
					Key:         "currentIssue",
					Label:       "現状課題",
					Type:        "textarea",
					Required:    true,
					Placeholder: "困っている点や背景を共有してください。",
				},
				{
					Key:        "desiredResolutionDate",
					Label:      "解決希望日",
					Type:       "date",
					HelperText: "目安の期限があれば入力してください。",
				},
			},
			StatusOptions: []Option{
				{Label: "未解決", Value: "open"},
				{Label: "対応中", Value: "in-progress"},
				{Label: "解決", Value: "resolved"},
			},
			DefaultStatus: "open",
		},
		{
			Key:         "recruitment",
			Label:       "仲間募集",
			Icon:        "🤝",
			Description: "一緒に進めるメンバーを募る投稿です。",
			MetadataFields: []MetadataField{
				{
					Key:         "projectOverview",
					Label:       "プロジェクト概要",
					Type:        "textarea",
					Required:    true,
					Placeholder: "何を実現したいのか、取り組み内容を伝えましょう。",
				},
				{Key: "roles", Label: "募集ロール", Type: "text", Placeholder: "例: デザイナー / エンジニア / PM など"},
				{Key: "contactChannel", Label: "連絡方法", Type: "text", Placeholder: "Slack #channel やメールアドレスなど"},
			},
			StatusOptions: []Option{
				{Label: "募集中", Value: "open"},
				{Label: "マッチング中", Value: "matching"},
				{Label: "終了", Value: "closed"},
			},
			DefaultStatus: "open",
		},
		{
			Key:         "showcase",
			Label:       "成果物紹介",
			Icon:        "🎁",
			Description: "出来上がった成果物をデモリンク付きで紹介します。",
			MetadataFields: []MetadataField{
				{Key: "demoUrl", Label: "デモURL", Type: "url", Placeholder: "https://example.com/demo"},
				{Key: "githubUrl", Label: "GitHub URL", Type: "url", Placeholder: "https://github.com/..."},
				{Key: "highlights", Label: "工夫した点", Type: "textarea", Placeholder: "推しポイントや背景を共有してください。"},
			},
			DefaultStatus: "published",
		},
	}
}
