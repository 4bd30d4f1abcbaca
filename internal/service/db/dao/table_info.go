package dao

const (
	// CollectionAccount 存储账号信息的表。
	CollectionAccount = "accounts"
	// CollectionAccountToken 存储已登录用户的表。
	CollectionAccountToken = "account_token"

	// CollectionInterview 面试排期表。
	CollectionInterview = "interviews"
	// CollectionInterviewParticipant 面试参与者表，_id为interviewId_userId。
	CollectionInterviewParticipant = "interview_participants"

	// CollectionApplication 候选人投递单表。
	CollectionApplication = "applications"

	// CollectionEvaluation 面试评价表，_id为interviewId_evaluatorId。
	CollectionEvaluation = "evaluations"
)
