package types

// Action 协议响应类型
const (
	ActionTypeAction      = "action"
	ActionTypeTransaction = "transaction"
	ActionTypeMessage     = "message"
	ActionTypePost        = "post"
)

type ActionParameter struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required,omitempty"`
}

type LinkedAction struct {
	Type       string            `json:"type"`
	Label      string            `json:"label"`
	Href       string            `json:"href"`
	Parameters []ActionParameter `json:"parameters,omitempty"`
}

type ActionLinks struct {
	Actions []LinkedAction `json:"actions"`
}

// ActionGetResponse GET 返回的发现文档
type ActionGetResponse struct {
	Type        string       `json:"type"`
	Label       string       `json:"label"`
	Icon        string       `json:"icon"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Disabled    bool         `json:"disabled,omitempty"`
	Links       *ActionLinks `json:"links,omitempty"`
}

// TransactionResponse POST 返回的未签名交易
type TransactionResponse struct {
	Type        string `json:"type"`
	Transaction string `json:"transaction"`
	Message     string `json:"message,omitempty"`
	BlinkURL    string `json:"blinkUrl,omitempty"`
}

// MessageResponse 不产生交易的 action（仅消息）
type MessageResponse struct {
	Type  string   `json:"type"`
	Data  string   `json:"data"`
	Links struct{} `json:"links"`
}

type ListResponse struct {
	Success  bool   `json:"success"`
	BlinkURL string `json:"blinkUrl"`
	Message  string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type ActionRule struct {
	PathPattern string `json:"pathPattern"`
	ApiPath     string `json:"apiPath"`
}

// ActionsJSON /actions.json 路由映射
type ActionsJSON struct {
	Rules []ActionRule `json:"rules"`
}

type DonateRequest struct {
	Amount  string `form:"amount,optional"`
	Account string `json:"account,optional"`
}

type VoteRequest struct {
	Candidate string `form:"candidate,optional"`
	Account   string `json:"account,optional"`
}

type SwapQuery struct {
	InputMint  string `form:"inputMint,optional"`
	OutputMint string `form:"outputMint,optional"`
}

type SwapRequest struct {
	Amount     string `form:"amount,optional"`
	InputMint  string `form:"inputMint,optional"`
	OutputMint string `form:"outputMint,optional"`
	Account    string `json:"account,optional"`
}

type NftRequest struct {
	Action      string `form:"action,optional"`
	Amount      string `form:"amount,optional"`
	Owner       string `form:"owner,optional"`
	Seller      string `form:"seller,optional"`
	MintAddress string `form:"mintAddress,optional"`
	Account     string `json:"account,optional"`
}

type TemplateNftQuery struct {
	MintAddress string `form:"mintAddress,optional"`
	Price       string `form:"price,optional"`
	Seller      string `form:"seller,optional"`
	Title       string `form:"title,optional"`
	Description string `form:"description,optional"`
}

type TemplateNftApproveRequest struct {
	MintAddress string `json:"mintAddress,optional"`
	Price       string `json:"price,optional"`
	Seller      string `json:"seller,optional"`
	Title       string `json:"title,optional"`
	Description string `json:"description,optional"`
	Approve     bool   `json:"approve,optional"`
}

type WagerCreateRequest struct {
	Account string `json:"account,optional"`
	Creator string `json:"creator,optional"`
	Series  string `json:"series,optional"`
	Amount  string `json:"amount,optional"`
	Side    string `json:"side,optional"`
	Time    string `json:"time,optional"`
}

type WagerQuery struct {
	Bet string `form:"bet,optional"`
}

type WagerJoinRequest struct {
	Bet     string `form:"bet,optional"`
	Account string `json:"account,optional"`
}

type DisplayConfigRequest struct {
	Title       string   `json:"title,optional"`
	Description string   `json:"description,optional"`
	Icon        string   `json:"icon,optional"`
	Amounts     []string `json:"amounts,optional"`
	PublicKey   string   `json:"publicKey,optional"`
	Name        string   `json:"name,optional"`
	Owner       string   `json:"owner,optional"`
	MintAddress string   `json:"mintAddress,optional"`
}
