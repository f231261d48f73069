package bot

// User-facing strings. The bot speaks Portuguese.
const (
	msgNoDraft        = "❌ Nenhum roteiro encontrado para salvar. Converse com a IA primeiro."
	msgEmptyResponse  = "❌ IA não retornou nenhum texto"
	msgNoVideos       = "Nenhum vídeo encontrado no Notion."
	msgListingHeader  = "📂 Vídeos no Notion:"
	msgUseCarregar    = "❌ Use primeiro o comando /carregar para listar os vídeos."
	msgMissingIndex   = "❌ Informe o número do vídeo. Exemplo: /carregar_roteiro 1"
	msgInvalidIndex   = "❌ Número inválido. Use: /carregar_roteiro 1"
	msgIndexOutOfList = "❌ Número fora da lista."

	// defaultTitle is used when /salvar carries no title argument.
	defaultTitle = "Novo Vídeo"
)

// helpText is the fixed /help reply.
const helpText = `📌 Comandos disponíveis:

/salvar <título> - Salva o último roteiro gerado pela IA no Notion com o título fornecido.
Exemplo: /salvar Meu Short Incrível

/carregar - Lista todos os vídeos/roteiros salvos no Notion.

/carregar_roteiro <número> - Mostra o roteiro completo do vídeo pelo número na lista.
Exemplo: /carregar_roteiro 1

/help - Exibe esta mensagem de ajuda.

💡 Dicas:
- Sempre que a IA gerar uma sugestão, apenas a última será salva.
- Use títulos claros e curtos para facilitar a organização no Notion.
- Você pode pedir várias sugestões da IA antes de salvar, mas apenas a última será guardada.`
