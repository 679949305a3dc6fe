package audit

// 面向用户的回复文本
const (
	msgPrivateOnly        = "为了保护隐私，请在与机器人的私聊中使用 `/audit` 命令。"
	msgUsage              = "使用方法：`/audit <审核码>`"
	msgInvalidFormat      = "请输入有效的审核码（格式如：xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx）。"
	msgBackendUnreachable = "连接后端服务器失败，请稍后再试。"
	msgNotFound           = "抱歉，找不到该审核码。请检查输入是否正确。"
	msgBackendFailed      = "后端服务请求失败，请稍后再试。"
	msgNotPending         = "该审核码状态为 %s，无法重新获取链接。"
	msgStatusUnknown      = "未知"
	msgExpired            = "该审核码已过期，请联系管理员或重新发起注册。"
	msgNotConfigured      = "未配置审核群 ID，请联系系统管理员。"
	msgIssueFailed        = "生成邀请链接失败，请确保机器人已加入审核群并拥有管理权限。"
	msgUnexpected         = "处理请求时发生错误，请稍后再试。"
	msgIssued             = "验证成功！\n用户：%s\n\n这是你的专属审核群邀请链接（%d分钟内有效，仅限使用一次）：\n%s"
)
