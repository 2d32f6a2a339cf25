package web

func (s *Service) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/health", s.getHealth)

		// dataset
		v1.GET("/senders", s.getSenders)
		v1.GET("/records", s.getRecords)
		v1.POST("/upload", s.postUpload)
		v1.POST("/reload", s.postReload)

		// analysis, all accept the from/to/sender filter
		v1.GET("/metrics", s.getMetrics)
		v1.GET("/content", s.getContent)
		v1.GET("/report", s.getReport)
		v1.GET("/report/text", s.getReportText)
		v1.GET("/wordcloud.png", s.getWordCloud)
		v1.GET("/export", s.getExport)
	}
}
