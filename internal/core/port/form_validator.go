package port

// Причины, по которым поле формы не прошло проверку.
const (
	ReasonRequired = "required"
	ReasonInvalid  = "invalid"
)

// Имена форм, которые умеет проверять валидатор.
const (
	FormContact  = "contact"
	FormMessage  = "message"
	FormLogin    = "login"
	FormRegister = "register"
)

// FormValidatorPort проверяет данные формы до обращения к бэкенду.
// Возвращает поле -> причина; пустая карта означает, что форма валидна.
type FormValidatorPort interface {
	Validate(form string, payload any) (map[string]string, error)
}
