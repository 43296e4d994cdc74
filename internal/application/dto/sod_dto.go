package dto

// SODValidateRequest pre-chequeo independiente de la política: permite a la UI
// decidir si pinta un botón de acción antes de intentar la transición.
type SODValidateRequest struct {
	Action     string `json:"action"`      // check, send, receive, complete, approve
	EntityType string `json:"entity_type"` // transfer, purchase_receipt
	EntityID   string `json:"entity_id"`
}

// SODSettingsRequest body para actualizar la configuración de segregación de
// funciones de la empresa.
type SODSettingsRequest struct {
	AllowCreatorCheck     bool     `json:"allow_creator_check"`
	AllowCreatorSend      bool     `json:"allow_creator_send"`
	AllowCheckerSend      bool     `json:"allow_checker_send"`
	AllowSenderReceive    bool     `json:"allow_sender_receive"`
	AllowCreatorReceive   bool     `json:"allow_creator_receive"`
	AllowReceiverComplete bool     `json:"allow_receiver_complete"`
	AllowReceiverApprove  bool     `json:"allow_receiver_approve"`
	AllowRequesterApprove bool     `json:"allow_requester_approve"`
	ExemptRoles           []string `json:"exempt_roles"`
}
